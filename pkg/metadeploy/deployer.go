package metadeploy

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/convox/logger"
	"github.com/corefw/aag/pkg/structs"
	"github.com/corefw/aag/pkg/vars"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// pruneListMax caps one listing/delete round while pruning.
const pruneListMax = 1000

type Deployer struct {
	config  *Config
	storage structs.ObjectStorage

	logger *logger.Logger
}

func NewDeployer(config *Config, storage structs.ObjectStorage) *Deployer {
	return &Deployer{
		config:  config,
		storage: storage,
		logger:  logger.New("ns=metadeploy"),
	}
}

// Run deploys every module in declared order. files maps workspace-relative
// names to contents.
func (d *Deployer) Run(files map[string][]byte) error {
	log := d.logger.At("Run").Start()

	for _, m := range d.config.Modules {
		if err := d.deployModule(m, files); err != nil {
			return log.Error(errors.Wrapf(err, "module %s", m.Name))
		}
	}

	log.Success()

	return nil
}

func (d *Deployer) deployModule(m Module, files map[string][]byte) error {
	log := d.logger.At("deployModule").Namespace("module=%q target=%q", m.Name, m.Target).Start()

	target := d.config.Targets[m.Target]

	names := make([]string, 0, len(files))

	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	type upload struct {
		key  string
		data []byte
	}

	uploads := []upload{}

	for _, f := range m.Files {
		g := glob.MustCompile(f.Source)

		for _, name := range names {
			if !g.Match(name) {
				continue
			}

			data := files[name]

			if f.Template {
				rendered, err := renderTemplate(name, data, d.config.Vars)
				if err != nil {
					return log.Error(err)
				}
				data = rendered
			}

			uploads = append(uploads, upload{key: target.Prefix + destKey(f, name), data: data})
		}
	}

	var (
		lock sync.Mutex
		wg   sync.WaitGroup
		derr error
	)

	for _, u := range uploads {
		wg.Add(1)

		go func(u upload) {
			defer wg.Done()

			if err := d.storage.Put(target.Bucket, u.key, u.data); err != nil {
				lock.Lock()
				if derr == nil {
					derr = errors.WithStack(err)
				}
				lock.Unlock()
			}
		}(u)
	}

	wg.Wait()

	if derr != nil {
		return log.Error(derr)
	}

	if m.Prune {
		keep := make(map[string]bool, len(uploads))

		for _, u := range uploads {
			keep[u.key] = true
		}

		if err := d.prune(target, keep); err != nil {
			return log.Error(err)
		}
	}

	log.Successf("files=%d", len(uploads))

	return nil
}

// prune removes keys under the target prefix that were not part of this
// deploy, batched at the storage delete limit.
func (d *Deployer) prune(target Target, keep map[string]bool) error {
	res, err := d.storage.List(target.Bucket, target.Prefix, "", pruneListMax)
	if err != nil {
		return errors.WithStack(err)
	}

	stale := []string{}

	for _, key := range res.Keys {
		if !keep[key] {
			stale = append(stale, key)
		}
	}

	for i := 0; i < len(stale); i += pruneListMax {
		high := i + pruneListMax
		if high > len(stale) {
			high = len(stale)
		}

		if err := d.storage.Delete(target.Bucket, stale[i:high]); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

// destKey resolves the storage key for a matched file. A Dest ending in /
// is a directory prefix; any other non-empty Dest replaces the name.
func destKey(f FileSpec, name string) string {
	switch {
	case f.Dest == "":
		return name
	case strings.HasSuffix(f.Dest, "/"):
		return f.Dest + path.Base(name)
	default:
		return f.Dest
	}
}

// renderTemplate substitutes config vars into a template file. JSON and
// YAML files are parsed and substituted as trees; anything else is treated
// as one string.
func renderTemplate(name string, data []byte, v map[string]string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		var tree interface{}
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", name)
		}
		return json.MarshalIndent(vars.SubstituteStrings(tree, v), "", "  ")
	case ".yml", ".yaml":
		var tree interface{}
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", name)
		}
		return yaml.Marshal(vars.SubstituteStrings(tree, v))
	default:
		return []byte(fmt.Sprintf("%v", vars.SubstituteStrings(string(data), v))), nil
	}
}
