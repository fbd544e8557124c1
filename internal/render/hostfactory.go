package render

import (
	"fmt"
	"path"
	"strings"
)

// HostFactoryFile is one file of the HostFactory conf tree.
type HostFactoryFile struct {
	// Path is relative to the HostFactory conf directory.
	Path    string
	Content []byte
	// Marker is the text whose presence means the file is already
	// configured for the provider and must be left alone.
	Marker string
	// CreateOnly files are written only when missing.
	CreateOnly bool
}

// HostFactoryDirs are the directories below the conf dir the tree needs.
func HostFactoryDirs(provider string) []string {
	return []string{
		path.Join("providers", provider, "conf"),
		path.Join("requestors", "symA", "conf"),
	}
}

// HostFactory renders the HostFactory provider and requestor configuration.
func HostFactory(d Data) ([]HostFactoryFile, error) {
	p := d.Provider
	specs := []struct {
		tmpl       string
		path       string
		marker     string
		createOnly bool
	}{
		{"hostfactoryconf.json.tmpl", "hostfactoryconf.json", strings.ToUpper(p), false},
		{"hostProviders.json.tmpl", "providers/hostProviders.json", p, false},
		{"provider_config.json.tmpl", fmt.Sprintf("providers/%s/conf/%sprov_config.json", p, p), "", true},
		{"provider_templates.json.tmpl", fmt.Sprintf("providers/%s/conf/%sprov_templates.json", p, p), "", true},
		{"hostRequestors.json.tmpl", "requestors/hostRequestors.json", p, false},
		{"symAreq_config.json.tmpl", "requestors/symA/conf/symAreq_config.json", p, false},
		{"symAreq_policy_config.json.tmpl", "requestors/symA/conf/symAreq_policy_config.json", p, false},
	}

	files := make([]HostFactoryFile, 0, len(specs))
	for _, s := range specs {
		content, err := execute(path.Join("hostfactory", s.tmpl), d)
		if err != nil {
			return nil, err
		}
		files = append(files, HostFactoryFile{Path: s.path, Content: content, Marker: s.marker, CreateOnly: s.createOnly})
	}
	return files, nil
}
