package aggregator

import (
	"fmt"
	"strings"

	"github.com/corefw/aag/pkg/structs"
	"github.com/pkg/errors"
)

const (
	functionPageSize = 50

	// maxFunctionPages caps registry pagination at 10000 functions.
	maxFunctionPages = 200
)

// ListAllFunctions pages through the deployed function registry until the
// continuation marker runs out. Exceeding maxFunctionPages is an error.
func (a *Aggregator) ListAllFunctions() ([]structs.FunctionRecord, error) {
	records := []structs.FunctionRecord{}
	marker := ""

	for page := 0; ; page++ {
		if page >= maxFunctionPages {
			return nil, fmt.Errorf("function listing exceeded %d pages", maxFunctionPages)
		}

		res, err := a.registry.ListFunctions(functionPageSize, marker)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		records = append(records, res.Records...)

		if res.NextMarker == "" {
			break
		}

		marker = res.NextMarker
	}

	return records, nil
}

// RelevantFunctions filters the deployed functions to those tagged with a
// 32-character version hash and the given branch, keyed by lowercased hash.
// The last record wins on a duplicate hash. An empty result is logged but
// is not an error; the pipeline degrades to a graph with no method
// mappings.
func (a *Aggregator) RelevantFunctions(gitBranch string) (structs.FunctionRegistry, error) {
	log := a.logger.At("RelevantFunctions").Namespace("branch=%q", gitBranch).Start()

	all, err := a.ListAllFunctions()
	if err != nil {
		return nil, log.Error(err)
	}

	relevant := structs.FunctionRegistry{}

	for _, r := range all {
		if len(r.VersionHash) != 32 {
			continue
		}
		if r.Branch != gitBranch {
			continue
		}

		relevant[strings.ToLower(r.VersionHash)] = r
	}

	if len(relevant) == 0 {
		log.Logf("state=error msg=%q", fmt.Sprintf("no deployed functions matched branch %s", gitBranch))
	}

	log.Successf("total=%d relevant=%d", len(all), len(relevant))

	return relevant, nil
}
