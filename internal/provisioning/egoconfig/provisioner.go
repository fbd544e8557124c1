package egoconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/render"
	"github.com/imamik/symphonyctl/internal/util/naming"
)

const phase = "egoconfig"

// ErrTopologyMissing is returned when discovery has not run.
var ErrTopologyMissing = errors.New("cluster topology has not been resolved")

// Provisioner writes the EGO configuration files.
type Provisioner struct{}

// NewProvisioner creates a new EGO configuration provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if !ctx.State.Resolved {
		return ErrTopologyMissing
	}
	data := render.NewData(ctx.Config, ctx.State.Topology)

	// 1. License and login profile
	if err := p.installLicense(ctx); err != nil {
		return err
	}
	if err := p.writeProfile(ctx, data); err != nil {
		return err
	}

	// 2. Node-local ego.conf
	if err := p.writeEgoConf(ctx, data); err != nil {
		return err
	}

	// 3. Files owned by the EGO install
	if ctx.Config.InstallsEgoCluster() {
		if err := p.patchProfileEgo(ctx); err != nil {
			return err
		}
		if err := p.writeClusterFiles(ctx, data); err != nil {
			return err
		}
	} else {
		provisioning.LogResourceSkipped(ctx.Observer, phase, "file", "ego.cluster", "shared install is owned by the master")
	}

	// 4. Point the conf dir at the node-local ego.conf
	return p.linkEgoConf(ctx)
}

func (p *Provisioner) replace(ctx *provisioning.Context, spec files.Spec) error {
	changed, err := ctx.Files.Replace(spec)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", spec.Path, err)
	}
	ctx.State.MarkChanged(spec.Path, changed)
	provisioning.LogResource(ctx.Observer, phase, "file", spec.Path, changed)
	return nil
}

// installLicense copies the entitlement file from the bootstrap directory.
func (p *Provisioner) installLicense(ctx *provisioning.Context) error {
	name := ctx.Config.Symphony.LicenseFile
	if name == "" {
		return nil
	}
	src := filepath.Join(ctx.Path(ctx.Config.Node.BootstrapDir), name)
	content, err := files.ReadIfExists(src)
	if err != nil {
		return err
	}
	if content == nil {
		provisioning.LogResourceSkipped(ctx.Observer, phase, "license", src, "not downloaded")
		return nil
	}
	return p.replace(ctx, files.Spec{
		Path:    ctx.Path(filepath.Join("/etc", filepath.Base(name))),
		Content: content,
		Mode:    0o644,
		Owner:   "root",
		Group:   "root",
	})
}

func (p *Provisioner) writeProfile(ctx *provisioning.Context, data render.Data) error {
	content, err := render.ProfileScript(data)
	if err != nil {
		return err
	}
	return p.replace(ctx, files.Spec{
		Path:    naming.ProfileScript(ctx.Config.Root, ctx.Config.Symphony.AppName),
		Content: content,
		Mode:    0o755,
		Owner:   "root",
		Group:   "root",
	})
}

// writeEgoConf keeps an existing ego.conf and only rewrites its master list.
func (p *Provisioner) writeEgoConf(ctx *provisioning.Context, data render.Data) error {
	path := naming.SystemEgoConf(ctx.Config.Root)
	existing, err := files.ReadIfExists(path)
	if err != nil {
		return err
	}

	var content []byte
	if existing != nil {
		content = render.SetMasterList(existing, data.MasterHost)
	} else if content, err = render.EgoConf(data); err != nil {
		return err
	}

	admin := ctx.Config.Symphony.Admin.User
	return p.replace(ctx, files.Spec{Path: path, Content: content, Mode: 0o644, Owner: admin, Group: admin})
}

// patchProfileEgo forces the binary type on Linux variants EGO does not
// recognize. It waits for the installer to have written profile.ego.
func (p *Provisioner) patchProfileEgo(ctx *provisioning.Context) error {
	path := naming.ProfileEgo(ctx.Path(ctx.Config.Symphony.EgoConfDir))
	existing, err := files.ReadIfExists(path)
	if err != nil {
		return err
	}
	if existing == nil {
		provisioning.LogResourceSkipped(ctx.Observer, phase, "file", path, "Symphony is not installed yet")
		return nil
	}

	patched, changed := render.ForceBinaryType(existing)
	if !changed {
		provisioning.LogResource(ctx.Observer, phase, "file", path, false)
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return p.replace(ctx, files.Spec{Path: path, Content: patched, Mode: info.Mode().Perm()})
}

func (p *Provisioner) writeClusterFiles(ctx *provisioning.Context, data render.Data) error {
	confDir := ctx.Path(ctx.Config.Symphony.EgoConfDir)
	admin := ctx.Config.Symphony.Admin.User

	cluster, err := render.EgoCluster(data)
	if err != nil {
		return err
	}
	groups, err := render.ResourceGroups(data)
	if err != nil {
		return err
	}

	for _, spec := range []files.Spec{
		{Path: naming.EgoCluster(confDir, ctx.Config.Cluster.Name), Content: cluster},
		{Path: naming.ResourceGroups(confDir), Content: groups},
	} {
		spec.Mode = 0o644
		spec.Owner = admin
		spec.Group = admin
		if err := p.replace(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) linkEgoConf(ctx *provisioning.Context) error {
	link := naming.EgoConf(ctx.Path(ctx.Config.Symphony.EgoConfDir))
	target := naming.SystemEgoConf(ctx.Config.Root)
	changed, err := ctx.Files.Symlink(target, link)
	if err != nil {
		return err
	}
	ctx.State.MarkChanged(link, changed)
	provisioning.LogResource(ctx.Observer, phase, "symlink", link, changed)
	return nil
}
