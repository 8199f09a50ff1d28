package aggregator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/corefw/aag/pkg/structs"
	"github.com/pkg/errors"
)

// metadataListMax caps the service listing at a single storage page.
// Listings beyond this many services are truncated, not paginated.
const metadataListMax = 1000

// ListServiceNames returns the service directories directly beneath prefix.
func (a *Aggregator) ListServiceNames(bucket, prefix string) ([]string, error) {
	log := a.logger.At("ListServiceNames").Namespace("bucket=%q prefix=%q", bucket, prefix).Start()

	res, err := a.storage.List(bucket, prefix, "/", metadataListMax)
	if err != nil {
		return nil, errors.WithStack(log.Error(err))
	}

	names := []string{}

	for _, cp := range res.CommonPrefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(cp, prefix), "/")
		if name == "" {
			continue
		}
		names = append(names, name)
	}

	if res.Truncated {
		log.Logf("count=%d truncated=true", len(names))
	}

	log.Successf("count=%d", len(names))

	return names, nil
}

// FetchServiceBundle downloads the three metadata artifacts for one
// service. A missing artifact leaves its field nil; an artifact that exists
// but does not parse fails the whole bundle.
func (a *Aggregator) FetchServiceBundle(bucket, prefix, name string) (*structs.ServiceBundle, error) {
	b := &structs.ServiceBundle{Name: name}

	artifacts := []struct {
		file string
		dest *map[string]interface{}
	}{
		{"package.json", &b.Package},
		{"serverless.json", &b.Serverless},
		{"openapi.json", &b.OpenApi},
	}

	for _, art := range artifacts {
		key := fmt.Sprintf("%s%s/latest/%s", prefix, name, art.file)

		data, err := a.storage.Get(bucket, key)
		if structs.ErrorNotFound(err) {
			continue
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		var v map[string]interface{}

		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", key)
		}

		*art.dest = v
	}

	return b, nil
}

// FetchAllBundles fetches every service bundle under prefix concurrently.
// Bundles are returned sorted by service name.
func (a *Aggregator) FetchAllBundles(bucket, prefix string) ([]*structs.ServiceBundle, error) {
	log := a.logger.At("FetchAllBundles").Namespace("bucket=%q prefix=%q", bucket, prefix).Start()

	names, err := a.ListServiceNames(bucket, prefix)
	if err != nil {
		return nil, log.Error(err)
	}

	var (
		lock sync.Mutex
		wg   sync.WaitGroup
		ferr error
	)

	bundles := make([]*structs.ServiceBundle, 0, len(names))

	for _, name := range names {
		wg.Add(1)

		go func(name string) {
			defer wg.Done()

			b, err := a.FetchServiceBundle(bucket, prefix, name)

			lock.Lock()
			defer lock.Unlock()

			if err != nil {
				if ferr == nil {
					ferr = err
				}
				return
			}

			bundles = append(bundles, b)
		}(name)
	}

	wg.Wait()

	if ferr != nil {
		return nil, log.Error(ferr)
	}

	sort.Slice(bundles, func(i, j int) bool { return bundles[i].Name < bundles[j].Name })

	log.Successf("services=%d", len(bundles))

	return bundles, nil
}
