package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/topology"
)

//go:embed templates/*.tmpl templates/hostfactory/*.tmpl
var templatesFS embed.FS

var funcs = template.FuncMap{
	"yn":    yn,
	"json":  jsonString,
	"xml":   xmlEscape,
	"add":   func(a, b int) int { return a + b },
	"upper": strings.ToUpper,
}

// Data is the template input.
type Data struct {
	AppName     string
	ClusterName string
	ClusterID   string

	MasterHost           string
	ManagementHosts      []string
	ManagementShortNames []string

	AdminUser   string
	EgoTop      string
	EgoConfDir  string
	JDKProfile  string
	LicenseFile string

	SimplifiedWEM   string
	BasePort        int
	DisableSSL      bool
	SharedFSInstall bool

	Provider     string
	SlotType     string
	CoresPerSlot int
}

// NewData builds template input from the configuration and topology.
func NewData(cfg *config.Config, topo topology.Topology) Data {
	return Data{
		AppName:              cfg.Symphony.AppName,
		ClusterName:          cfg.Cluster.Name,
		ClusterID:            cfg.Cluster.ID,
		MasterHost:           topo.MasterHost,
		ManagementHosts:      topo.ManagementHosts,
		ManagementShortNames: topo.ManagementShortNames,
		AdminUser:            cfg.Symphony.Admin.User,
		EgoTop:               cfg.Symphony.EgoTop,
		EgoConfDir:           cfg.Symphony.EgoConfDir,
		JDKProfile:           cfg.Symphony.JDKProfile,
		LicenseFile:          cfg.Symphony.LicenseFile,
		SimplifiedWEM:        cfg.Symphony.SimplifiedWEM,
		BasePort:             cfg.Symphony.BasePort,
		DisableSSL:           cfg.Symphony.DisableSSL,
		SharedFSInstall:      cfg.Symphony.SharedFSInstall,
		Provider:             cfg.Symphony.HostFactory.Provider,
		SlotType:             cfg.Autoscale.SlotType,
		CoresPerSlot:         cfg.Autoscale.CoresPerSlot,
	}
}

func execute(name string, data any) ([]byte, error) {
	content, err := templatesFS.ReadFile(path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// ProfileScript renders /etc/profile.d/<app>.sh.
func ProfileScript(d Data) ([]byte, error) {
	return execute("profile.sh.tmpl", d)
}

// EgoConf renders a fresh ego.conf for the master list.
func EgoConf(d Data) ([]byte, error) {
	return execute("ego.conf.tmpl", d)
}

// EgoCluster renders ego.cluster.<clusterName>.
func EgoCluster(d Data) ([]byte, error) {
	return execute("ego.cluster.tmpl", d)
}

// ResourceGroups renders ResourceGroups.xml.
func ResourceGroups(d Data) ([]byte, error) {
	return execute("ResourceGroups.xml.tmpl", d)
}

// Limits renders the admin user's limits.d file.
func Limits(d Data) ([]byte, error) {
	return execute("limits.conf.tmpl", d)
}

// masterListKey starts the ego.conf line naming the master candidates.
const masterListKey = "EGO_MASTER_LIST="

// SetMasterList replaces the EGO_MASTER_LIST line of an existing ego.conf,
// appending one when absent. Other lines are kept as they are.
func SetMasterList(content []byte, master string) []byte {
	line := masterListKey + master
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(content) == 0 {
		lines = nil
	}

	found := false
	for i, l := range lines {
		if strings.HasPrefix(l, masterListKey) {
			lines[i] = line
			found = true
		}
	}
	if !found {
		lines = append(lines, line)
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// Lines inserted into profile.ego so unrecognized Linux variants still get a
// binary type.
const (
	binaryTypeProbe  = "Cannot get binary type"
	BinaryTypeMarker = "Forcing EGO binary type"
)

// ForceBinaryType inserts an EGO_BINARY_TYPE export after every line of
// profile.ego reporting an unknown binary type. It returns the content
// unchanged, and false, when the patch is already present.
func ForceBinaryType(content []byte) ([]byte, bool) {
	if bytes.Contains(content, []byte(BinaryTypeMarker)) {
		return content, false
	}

	var out []string
	patched := false
	for _, l := range strings.SplitAfter(string(content), "\n") {
		out = append(out, l)
		if strings.Contains(l, binaryTypeProbe) {
			if !strings.HasSuffix(l, "\n") {
				out = append(out, "\n")
			}
			out = append(out,
				`     export EGO_BINARY_TYPE="linux-x86_64"`+"\n",
				`     echo "`+BinaryTypeMarker+`: $EGO_BINARY_TYPE"`+"\n")
			patched = true
		}
	}
	if !patched {
		return content, false
	}
	return []byte(strings.Join(out, "")), true
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func xmlEscape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
