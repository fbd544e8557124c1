package account

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/imamik/symphonyctl/internal/platform/ego"
	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/render"
	"github.com/imamik/symphonyctl/internal/util/keygen"
	"github.com/imamik/symphonyctl/internal/util/naming"
)

const phase = "account"

// getent exits with 2 when the key is not in the database.
const getentNotFound = 2

// Provisioner creates the cluster admin account.
type Provisioner struct {
	keyBits int
}

// NewProvisioner creates a new account provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{keyBits: keygen.DefaultBits}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	// 1. Group and user
	if err := p.ensureGroup(ctx); err != nil {
		return err
	}
	if err := p.ensureUser(ctx); err != nil {
		return err
	}

	// 2. Home and ssh directories
	if err := p.ensureDirs(ctx); err != nil {
		return err
	}

	// 3. Key pair
	if err := p.ensureKeyPair(ctx); err != nil {
		return err
	}

	// 4. Limits
	return p.ensureLimits(ctx)
}

func (p *Provisioner) ensureGroup(ctx *provisioning.Context) error {
	admin := ctx.Config.Symphony.Admin
	exists, err := p.lookup(ctx, "group", admin.User)
	if err != nil {
		return err
	}
	if exists {
		provisioning.LogResource(ctx.Observer, phase, "group", admin.User, false)
		return nil
	}

	if err := p.run(ctx, ego.Command{
		Name: "groupadd",
		Args: []string{"-g", strconv.Itoa(admin.GID), admin.User},
	}); err != nil {
		return fmt.Errorf("failed to create group %s: %w", admin.User, err)
	}
	provisioning.LogResource(ctx.Observer, phase, "group", admin.User, true)
	return nil
}

// ensureUser creates the admin user. An existing user is left alone, so a
// home directory that is already present is never moved.
func (p *Provisioner) ensureUser(ctx *provisioning.Context) error {
	admin := ctx.Config.Symphony.Admin
	exists, err := p.lookup(ctx, "passwd", admin.User)
	if err != nil {
		return err
	}
	if exists {
		provisioning.LogResource(ctx.Observer, phase, "user", admin.User, false)
		return nil
	}

	if err := p.run(ctx, ego.Command{
		Name: "useradd",
		Args: []string{
			"-u", strconv.Itoa(admin.UID),
			"-g", admin.User,
			"-d", admin.Home,
			"-s", "/bin/bash",
			"-m",
			admin.User,
		},
	}); err != nil {
		return fmt.Errorf("failed to create user %s: %w", admin.User, err)
	}
	provisioning.LogResource(ctx.Observer, phase, "user", admin.User, true)
	return nil
}

// lookup asks getent for name in database.
func (p *Provisioner) lookup(ctx *provisioning.Context, database, name string) (bool, error) {
	_, err := ctx.Runner.Run(ctx, ego.Command{Name: "getent", Args: []string{database, name}})
	if err == nil {
		return true, nil
	}
	var cmdErr *ego.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode == getentNotFound {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up %s %s: %w", database, name, err)
}

// run executes a state-changing command unless this is a dry run.
func (p *Provisioner) run(ctx *provisioning.Context, cmd ego.Command) error {
	if ctx.Config.DryRun {
		ctx.Observer.Printf("[%s] dry run, would run: %s", phase, cmd)
		return nil
	}
	_, err := ctx.Runner.Run(ctx, cmd)
	return err
}

func (p *Provisioner) ensureDirs(ctx *provisioning.Context) error {
	admin := ctx.Config.Symphony.Admin
	home := ctx.Path(admin.Home)
	dirs := []struct {
		path string
		mode fs.FileMode
	}{
		{home, 0o755},
		{naming.SSHDir(home), 0o700},
	}
	for _, d := range dirs {
		changed, err := ctx.Files.EnsureDir(d.path, d.mode, admin.User, admin.User)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", d.path, err)
		}
		ctx.State.MarkChanged(d.path, changed)
		provisioning.LogResource(ctx.Observer, phase, "directory", d.path, changed)
	}
	return nil
}

// ensureKeyPair generates id_rsa once and authorizes it for the admin user,
// so management hosts sharing the home directory can reach each other.
func (p *Provisioner) ensureKeyPair(ctx *provisioning.Context) error {
	admin := ctx.Config.Symphony.Admin
	sshDir := naming.SSHDir(ctx.Path(admin.Home))
	privatePath := filepath.Join(sshDir, "id_rsa")

	existing, err := files.ReadIfExists(privatePath)
	if err != nil {
		return err
	}
	if existing != nil {
		provisioning.LogResource(ctx.Observer, phase, "key pair", privatePath, false)
		return nil
	}

	if ctx.Config.DryRun {
		ctx.Observer.Printf("[%s] dry run, would generate %s", phase, privatePath)
		ctx.State.MarkChanged(privatePath, true)
		return nil
	}

	pair, err := keygen.GenerateRSAKeyPair(p.keyBits, admin.User+"@"+ctx.Config.Node.Hostname)
	if err != nil {
		return err
	}

	authPath := filepath.Join(sshDir, "authorized_keys")
	authorized, err := files.ReadIfExists(authPath)
	if err != nil {
		return err
	}
	authorized, _, err = keygen.AppendAuthorizedKey(authorized, pair.PublicKey)
	if err != nil {
		return err
	}

	specs := []files.Spec{
		{Path: privatePath, Content: pair.PrivateKey, Mode: 0o600},
		{Path: privatePath + ".pub", Content: pair.PublicKey, Mode: 0o644},
		{Path: authPath, Content: authorized, Mode: 0o644},
	}
	for _, spec := range specs {
		spec.Owner = admin.User
		spec.Group = admin.User
		changed, err := ctx.Files.Replace(spec)
		if err != nil {
			return fmt.Errorf("failed to install key pair: %w", err)
		}
		ctx.State.MarkChanged(spec.Path, changed)
		provisioning.LogResource(ctx.Observer, phase, "file", spec.Path, changed)
	}

	ctx.State.AdminKeyFingerprint = pair.Fingerprint
	ctx.Observer.Printf("[%s] generated key pair for %s (%s)", phase, admin.User, pair.Fingerprint)
	return nil
}

func (p *Provisioner) ensureLimits(ctx *provisioning.Context) error {
	content, err := render.Limits(render.NewData(ctx.Config, ctx.State.Topology))
	if err != nil {
		return err
	}
	path := naming.LimitsFile(ctx.Config.Root, ctx.Config.Symphony.Admin.User)
	changed, err := ctx.Files.Replace(files.Spec{Path: path, Content: content, Mode: 0o644, Owner: "root", Group: "root"})
	if err != nil {
		return fmt.Errorf("failed to write limits: %w", err)
	}
	ctx.State.MarkChanged(path, changed)
	provisioning.LogResource(ctx.Observer, phase, "file", path, changed)
	return nil
}
