// Package usercontext resolves the actual (pre-sudo) invoking user.
//
// devkit runs elevated, but most of what it manages lives under the real
// user's home directory. The Context is resolved once at process start and
// threaded into every operation that touches user-scoped paths, so nothing
// ever falls back to the elevated process's own home.
package usercontext

import (
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/halfdome/devkit/pkg/errors"
	"github.com/halfdome/devkit/pkg/logging"
)

// Context describes the real invoking user, independent of elevation.
type Context struct {
	Username string
	UID      int
	GID      int
	Home     string

	// euid of the running process, not of the real user
	euid int
}

// Resolve determines the actual user once, preferring the sudo-provided
// identity over the process's own.
func Resolve() (*Context, error) {
	logger := logging.GetLogger("usercontext")
	ctx := &Context{euid: os.Geteuid()}

	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			ctx.Username = u.Username
			ctx.UID, _ = strconv.Atoi(u.Uid)
			ctx.GID, _ = strconv.Atoi(u.Gid)
			ctx.Home = u.HomeDir
			logger.Debug().Str("user", ctx.Username).Str("home", ctx.Home).Msg("Resolved user from SUDO_USER")
			return ctx, nil
		}
		logger.Debug().Err(err).Str("sudo_user", sudoUser).Msg("SUDO_USER lookup failed, trying SUDO_UID")

		// Lookup by name can fail on hosts with remote user databases;
		// sudo also exports the numeric ids.
		if uidStr := os.Getenv("SUDO_UID"); uidStr != "" {
			if u, err := user.LookupId(uidStr); err == nil {
				ctx.Username = u.Username
				ctx.UID, _ = strconv.Atoi(u.Uid)
				ctx.GID, _ = strconv.Atoi(u.Gid)
				ctx.Home = u.HomeDir
				return ctx, nil
			}
		}
	}

	current, err := user.Current()
	if err != nil {
		home := os.Getenv("HOME")
		if home == "" {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "unable to determine invoking user")
		}
		ctx.Username = os.Getenv("USER")
		ctx.UID = os.Getuid()
		ctx.GID = os.Getgid()
		ctx.Home = home
		return ctx, nil
	}

	ctx.Username = current.Username
	ctx.UID, _ = strconv.Atoi(current.Uid)
	ctx.GID, _ = strconv.Atoi(current.Gid)
	ctx.Home = current.HomeDir
	if ctx.Home == "" {
		ctx.Home = os.Getenv("HOME")
	}
	if ctx.Home == "" {
		return nil, errors.New(errors.ErrFileAccess, "unable to determine home directory for invoking user")
	}
	return ctx, nil
}

// IsElevated reports whether the process runs with root privileges.
func (c *Context) IsElevated() bool {
	return c.euid == 0
}

// Command builds an exec.Cmd that runs as the real user. When the process
// is elevated and the real user is not root, the command is demoted via
// process credentials and gets the user's HOME so user-level installers
// populate the right directories.
func (c *Context) Command(name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+c.Home,
		"USER="+c.Username,
		"LOGNAME="+c.Username,
	)
	if c.euid == 0 && c.UID != 0 {
		cmd.SysProcAttr = &syscall.SysProcAttr{
			Credential: &syscall.Credential{
				Uid: uint32(c.UID),
				Gid: uint32(c.GID),
			},
		}
	}
	return cmd
}

// ExpandHome expands a leading ~ to the real user's home directory.
func (c *Context) ExpandHome(path string) string {
	if path == "~" {
		return c.Home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(c.Home, path[2:])
	}
	return path
}

// Chown transfers ownership of path to the real user when the process is
// elevated. A no-op otherwise.
func (c *Context) Chown(path string) error {
	if c.euid != 0 || c.UID == 0 {
		return nil
	}
	return os.Chown(path, c.UID, c.GID)
}
