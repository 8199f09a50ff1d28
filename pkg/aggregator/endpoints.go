package aggregator

import (
	"strings"

	"github.com/corefw/aag/pkg/helpers"
	"github.com/corefw/aag/pkg/structs"
)

const (
	envVersionHash         = "COREFW_VERSION_HASH"
	integrationLambdaProxy = "lambda-proxy"
)

var endpointMethods = map[string]bool{
	"get":    true,
	"patch":  true,
	"post":   true,
	"delete": true,
}

// BuildEndpointMap normalizes raw service metadata into a path > method >
// descriptor map. Malformed functions and events are logged and skipped.
// Later bundles overwrite earlier ones at the same (path, method). The
// second return is the count of events that resolved into the map.
func (a *Aggregator) BuildEndpointMap(bundles []*structs.ServiceBundle) (structs.EndpointMap, int) {
	log := a.logger.At("BuildEndpointMap").Start()

	endpoints := structs.EndpointMap{}
	resolved := 0

	for _, b := range bundles {
		if b.Serverless == nil {
			continue
		}

		functions, ok := b.Serverless["functions"].(map[string]interface{})
		if !ok {
			continue
		}

		for key, fv := range functions {
			fn, ok := fv.(map[string]interface{})
			if !ok {
				log.Logf("state=skip service=%q function=%q reason=%q", b.Name, key, "not an object")
				continue
			}

			name := helpers.Coalesce(stringValue(fn["name"]), key)

			env, ok := fn["environment"].(map[string]interface{})
			if !ok {
				log.Logf("state=skip service=%q function=%q reason=%q", b.Name, key, "missing environment")
				continue
			}

			hash := strings.ToLower(stringValue(env[envVersionHash]))
			if len(hash) != 32 {
				log.Logf("state=skip service=%q function=%q reason=%q", b.Name, key, "invalid version hash")
				continue
			}

			events, ok := fn["events"].([]interface{})
			if !ok {
				log.Logf("state=skip service=%q function=%q reason=%q", b.Name, key, "missing events")
				continue
			}

			for i, ev := range events {
				http, reason := httpEvent(ev)
				if reason != "" {
					log.Logf("state=skip service=%q function=%q event=%d reason=%q", b.Name, key, i, reason)
					continue
				}

				path := stringValue(http["path"])
				method := strings.ToLower(stringValue(http["method"]))

				if endpoints[path] == nil {
					endpoints[path] = map[string]structs.EndpointDescriptor{}
				}

				endpoints[path][method] = structs.EndpointDescriptor{
					Name:        name,
					ShortName:   key,
					Description: stringValue(fn["description"]),
					Path:        path,
					Method:      method,
					Service:     b.Name,
					VersionHash: hash,
				}

				resolved++
			}
		}
	}

	log.Successf("paths=%d resolved=%d", len(endpoints), resolved)

	return endpoints, resolved
}

// httpEvent validates one event entry, returning its http block or the
// reason it was rejected.
func httpEvent(ev interface{}) (map[string]interface{}, string) {
	e, ok := ev.(map[string]interface{})
	if !ok {
		return nil, "not an object"
	}

	http, ok := e["http"].(map[string]interface{})
	if !ok {
		return nil, "missing http"
	}

	method := strings.ToLower(stringValue(http["method"]))

	switch {
	case stringValue(http["path"]) == "":
		return nil, "missing path"
	case method == "":
		return nil, "missing method"
	case !endpointMethods[method]:
		return nil, "unsupported method"
	case stringValue(http["integration"]) == "":
		return nil, "missing integration"
	case stringValue(http["integration"]) != integrationLambdaProxy:
		return nil, "unsupported integration"
	}

	return http, ""
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
