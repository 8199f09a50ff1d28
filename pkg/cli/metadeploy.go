package cli

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/convox/stdcli"
	"github.com/corefw/aag/pkg/helpers"
	"github.com/corefw/aag/pkg/metadeploy"
	"github.com/corefw/aag/provider/aws"
	"github.com/pkg/errors"
)

func MetaDeploy(p *aws.Provider, c *stdcli.Context) error {
	config := helpers.Coalesce(c.String("config"), "metadeploy.yml")
	dir := helpers.Coalesce(c.String("dir"), ".")

	data, err := ioutil.ReadFile(config)
	if err != nil {
		return errors.WithStack(err)
	}

	cfg, err := metadeploy.LoadConfig(data)
	if err != nil {
		return err
	}

	files, err := collectFiles(dir)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found in %s", dir)
	}

	c.Startf("Deploying %d files from %s", len(files), dir)

	d := metadeploy.NewDeployer(cfg, p)

	if err := d.Run(files); err != nil {
		return err
	}

	return c.OK()
}

func collectFiles(dir string) (map[string][]byte, error) {
	files := map[string][]byte{}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		data, err := ioutil.ReadFile(path)
		if err != nil {
			return err
		}

		files[filepath.ToSlash(rel)] = data

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return files, nil
}
