package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/imamik/symphonyctl/internal/provisioning/discovery"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/ui/style"
)

// Output formats of resolve and show.
const (
	outputYAML = "yaml"
	outputJSON = "json"
)

// TopologyOutput is the machine-readable form of a topology.
type TopologyOutput struct {
	Cluster              string   `json:"cluster" yaml:"cluster"`
	ClusterName          string   `json:"clusterName" yaml:"clusterName"`
	MasterHost           string   `json:"masterHost" yaml:"masterHost"`
	ManagementHosts      []string `json:"managementHosts" yaml:"managementHosts"`
	ManagementShortNames []string `json:"managementShortNames" yaml:"managementShortNames"`
	Source               string   `json:"source,omitempty" yaml:"source,omitempty"`
	Attempts             int      `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// loadTopology reads the persisted topology files.
var loadTopology = discovery.Load

// Resolve handles the resolve command.
func Resolve(ctx context.Context, opts *GlobalOptions, persist bool, output string) error {
	if err := checkOutput(output, false); err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	pCtx, err := newContext(ctx, cfg, "resolve")
	if err != nil {
		return err
	}

	if cfg.ManualOverride() == nil {
		backend, err := openBackend(pCtx)
		if err != nil {
			return err
		}
		pCtx.Directory = backend
	}

	if err := discovery.NewProvisioner(discovery.WithPersist(persist)).Provision(pCtx); err != nil {
		return err
	}

	res := pCtx.State.Resolution
	out := toOutput(cfg.Cluster.ID, cfg.Cluster.Name, res.Topology)
	out.Source = string(res.Source)
	out.Attempts = res.Attempts
	return printTopology(stdout, output, out)
}

// Show handles the show command. Without an explicit format the topology
// is styled on a terminal and printed as YAML otherwise.
func Show(_ context.Context, opts *GlobalOptions, output string) error {
	if err := checkOutput(output, true); err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	topo, ok, err := loadTopology(cfg.Root, cfg.Symphony.AppName)
	if err != nil {
		return fmt.Errorf("failed to read persisted topology: %w", err)
	}

	if output == "" && isTTY() {
		_, err := fmt.Fprint(stdout, style.Topology(style.TopologyView{
			ClusterName: cfg.Cluster.Name,
			LocalHost:   cfg.Node.Hostname,
			Topology:    topo,
		}))
		return err
	}
	if !ok {
		return fmt.Errorf("no topology persisted for %s, run bootstrap or resolve --persist first", cfg.Symphony.AppName)
	}
	if output == "" {
		output = outputYAML
	}
	return printTopology(stdout, output, toOutput(cfg.Cluster.ID, cfg.Cluster.Name, topo))
}

func toOutput(clusterID, clusterName string, topo topology.Topology) TopologyOutput {
	return TopologyOutput{
		Cluster:              clusterID,
		ClusterName:          clusterName,
		MasterHost:           topo.MasterHost,
		ManagementHosts:      topo.ManagementHosts,
		ManagementShortNames: topo.ManagementShortNames,
	}
}

func checkOutput(output string, allowEmpty bool) error {
	switch output {
	case outputYAML, outputJSON:
		return nil
	case "":
		if allowEmpty {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (use yaml or json)", output)
}

func printTopology(w io.Writer, output string, out TopologyOutput) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode topology: %w", err)
		}
		return enc.Close()
	}
}
