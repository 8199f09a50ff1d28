package aggregator

import (
	"fmt"
	"time"

	"github.com/corefw/aag/pkg/structs"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

var (
	createAcceptStates = []string{
		"CREATE_COMPLETE",
		"CREATE_FAILED",
		"ROLLBACK_COMPLETE",
		"ROLLBACK_FAILED",
	}

	updateAcceptStates = []string{
		"UPDATE_COMPLETE",
		"UPDATE_FAILED",
		"UPDATE_ROLLBACK_COMPLETE",
		"UPDATE_ROLLBACK_FAILED",
	}

	successStates = map[string]bool{
		"CREATE_COMPLETE": true,
		"UPDATE_COMPLETE": true,
	}
)

// Deploy creates the named stack if it does not exist and updates it
// otherwise. The returned accept states are the terminal states for the
// operation performed; reaching one of them is not success by itself, the
// caller maps the final state.
func (a *Aggregator) Deploy(name string, graph *structs.ResourceGraph) (string, []string, error) {
	log := a.logger.At("Deploy").Namespace("stack=%q", name).Start()

	body, err := graph.TemplateBody()
	if err != nil {
		return "", nil, log.Error(err)
	}

	existing, err := a.target.Describe(name)
	if err != nil && !structs.ErrorNotFound(err) {
		return "", nil, errors.WithStack(log.Error(err))
	}

	if existing == nil {
		tags := map[string]string{
			"aag:api":    a.opts.ApiName,
			"aag:branch": a.opts.GitBranch,
		}

		id, err := a.target.Create(name, body, uuid.NewV4().String(), tags)
		if err != nil {
			return "", nil, errors.WithStack(log.Error(err))
		}

		log.Successf("op=create id=%q", id)

		return id, createAcceptStates, nil
	}

	if err := a.target.Update(existing.Id, body); err != nil {
		return "", nil, errors.WithStack(log.Error(err))
	}

	log.Successf("op=update id=%q", existing.Id)

	return existing.Id, updateAcceptStates, nil
}

// WaitForStates polls the stack on a fixed interval until its status is one
// of accept, or the attempt budget runs out, which is a timeout error.
func (a *Aggregator) WaitForStates(id string, accept []string, interval time.Duration, maxAttempts int) (string, error) {
	log := a.logger.At("WaitForStates").Namespace("id=%q", id).Start()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		s, err := a.target.Describe(id)
		if err != nil {
			return "", errors.WithStack(log.Error(err))
		}

		for _, state := range accept {
			if s.Status == state {
				log.Successf("status=%q attempts=%d", s.Status, attempt)
				return s.Status, nil
			}
		}

		if attempt < maxAttempts {
			time.Sleep(interval)
		}
	}

	return "", log.Error(errorTimeout(fmt.Sprintf("stack %s did not stabilize within %d attempts", id, maxAttempts)))
}
