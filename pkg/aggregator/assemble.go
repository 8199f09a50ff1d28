package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corefw/aag/pkg/structs"
	"github.com/corefw/aag/pkg/vars"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const scaffoldTemplate = `
FormatVersion: "2010-09-09"
Description: Aggregated API ${apiName} for branch ${gitBranch}
Outputs:
  RestApiId:
    Value:
      Ref: ${apiRefName}
`

const restApiTemplate = `
Type: AWS::ApiGateway::RestApi
Properties:
  Name: ${apiName}
  Description: Aggregated API for branch ${gitBranch}
`

const rootResourceTemplate = `
Type: AWS::ApiGateway::Resource
Properties:
  RestApiId:
    Ref: ${apiRefName}
  ParentId:
    Fn::GetAtt:
      - ${apiRefName}
      - RootResourceId
  PathPart: ${pathPart}
`

const childResourceTemplate = `
Type: AWS::ApiGateway::Resource
Properties:
  RestApiId:
    Ref: ${apiRefName}
  ParentId:
    Ref: ${parentRefName}
  PathPart: ${pathPart}
`

const methodTemplate = `
Type: AWS::ApiGateway::Method
Properties:
  RestApiId:
    Ref: ${apiRefName}
  ResourceId:
    Ref: ${resourceRefName}
  HttpMethod: ${httpMethod}
  AuthorizationType: NONE
  Integration:
    Type: AWS_PROXY
    IntegrationHttpMethod: POST
    Uri: arn:aws:apigateway:${region}:lambda:path/2015-03-31/functions/${functionArn}/invocations
`

const permissionTemplate = `
Type: AWS::Lambda::Permission
Properties:
  Action: lambda:InvokeFunction
  FunctionName: ${functionName}
  Principal: apigateway.amazonaws.com
`

const deploymentTemplate = `
Type: AWS::ApiGateway::Deployment
Properties:
  RestApiId:
    Ref: ${apiRefName}
  StageName: ${gitBranch}
`

// Assemble builds the resource graph for the endpoint map: the REST API
// root, one resource node per distinct path segment, one method per
// (path, method) with a registry hit, one invoke permission per registry
// function, and a deployment depending on every method. The second return
// is the list of method refNames.
func (a *Aggregator) Assemble(endpoints structs.EndpointMap, functions structs.FunctionRegistry, gvars map[string]interface{}) (*structs.ResourceGraph, []string, error) {
	log := a.logger.At("Assemble").Start()

	apiRefName, _ := gvars["apiRefName"].(string)
	if apiRefName == "" {
		return nil, nil, log.Error(fmt.Errorf("apiRefName variable required"))
	}

	scaffold, err := fragment(scaffoldTemplate, gvars)
	if err != nil {
		return nil, nil, log.Error(err)
	}

	graph := &structs.ResourceGraph{
		FormatVersion: stringValue(scaffold["FormatVersion"]),
		Description:   stringValue(scaffold["Description"]),
		Resources:     map[string]interface{}{},
	}

	if outputs, ok := scaffold["Outputs"].(map[string]interface{}); ok {
		graph.Outputs = outputs
	}

	restApi, err := fragment(restApiTemplate, gvars)
	if err != nil {
		return nil, nil, log.Error(err)
	}

	graph.Resources[apiRefName] = restApi

	paths := make([]string, 0, len(endpoints))

	for p := range endpoints {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	for _, p := range paths {
		if err := a.assemblePathResources(graph, p, gvars); err != nil {
			return nil, nil, log.Error(err)
		}
	}

	methodRefs := []string{}

	for _, p := range paths {
		methods := make([]string, 0, len(endpoints[p]))

		for m := range endpoints[p] {
			methods = append(methods, m)
		}

		sort.Strings(methods)

		for _, m := range methods {
			d := endpoints[p][m]

			fn, ok := functions[d.VersionHash]
			if !ok {
				log.Logf("state=skip path=%q method=%q version=%q reason=%q", p, m, d.VersionHash, "no matching function")
				continue
			}

			fv := merge(gvars, map[string]interface{}{
				"resourceRefName": FormatRefName("AagResource", p, ""),
				"httpMethod":      strings.ToUpper(m),
				"functionArn":     fn.Arn,
			})

			node, err := fragment(methodTemplate, fv)
			if err != nil {
				return nil, nil, log.Error(err)
			}

			refName := FormatRefName("AagMethod", p, capitalize(m))

			graph.Resources[refName] = node
			methodRefs = append(methodRefs, refName)
		}
	}

	hashes := make([]string, 0, len(functions))

	for h := range functions {
		hashes = append(hashes, h)
	}

	sort.Strings(hashes)

	// permissions cover every registry function, wired to a method or not
	for _, h := range hashes {
		fn := functions[h]

		fv := merge(gvars, map[string]interface{}{"functionName": fn.Name})

		node, err := fragment(permissionTemplate, fv)
		if err != nil {
			return nil, nil, log.Error(err)
		}

		graph.Resources[FormatRefName("", fn.Name, "AagPerms")] = node
	}

	deployment, err := fragment(deploymentTemplate, gvars)
	if err != nil {
		return nil, nil, log.Error(err)
	}

	if len(methodRefs) > 0 {
		deployment["DependsOn"] = append([]string{}, methodRefs...)
	}

	graph.Resources[fmt.Sprintf("AagDeployment%d", time.Now().Unix())] = deployment

	log.Successf("resources=%d methods=%d", len(graph.Resources), len(methodRefs))

	return graph, methodRefs, nil
}

// assemblePathResources walks the path segments left to right, creating one
// resource node per cumulative path that does not already exist. Shared
// prefixes across endpoints dedupe into a single node.
func (a *Aggregator) assemblePathResources(graph *structs.ResourceGraph, p string, gvars map[string]interface{}) error {
	parentRef := ""
	fullPath := ""

	for i, seg := range splitPath(p) {
		if fullPath == "" {
			fullPath = seg
		} else {
			fullPath = fullPath + "/" + seg
		}

		refName := FormatRefName("AagResource", fullPath, "")

		if _, ok := graph.Resources[refName]; !ok {
			tmpl := childResourceTemplate
			if i == 0 {
				tmpl = rootResourceTemplate
			}

			fv := merge(gvars, map[string]interface{}{
				"pathPart":      seg,
				"parentRefName": parentRef,
			})

			node, err := fragment(tmpl, fv)
			if err != nil {
				return err
			}

			graph.Resources[refName] = node
		}

		parentRef = refName
	}

	return nil
}

func splitPath(p string) []string {
	segs := []string{}

	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	return segs
}

// fragment parses a YAML template and substitutes the supplied variables.
func fragment(tmpl string, fvars map[string]interface{}) (map[string]interface{}, error) {
	var v interface{}

	if err := yaml.Unmarshal([]byte(tmpl), &v); err != nil {
		return nil, errors.WithStack(err)
	}

	sub := vars.Substitute(stringifyKeys(v), fvars)

	m, ok := sub.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("template fragment is not a mapping")
	}

	return m, nil
}

// stringifyKeys rewrites yaml.v2's interface-keyed maps so the tree can be
// marshaled as JSON.
func stringifyKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = stringifyKeys(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = stringifyKeys(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = stringifyKeys(val)
		}
		return out
	default:
		return v
	}
}

func merge(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))

	for k, v := range base {
		out[k] = v
	}

	for k, v := range extra {
		out[k] = v
	}

	return out
}
