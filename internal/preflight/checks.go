package preflight

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"tetsu/internal/config"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed
// and traversed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if path == "" {
		return Result{Name: name, Detail: "path not set"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckAniDBCredentials verifies that a username and password are configured.
func CheckAniDBCredentials(cfg *config.Config) Result {
	const name = "AniDB credentials"
	if err := cfg.RequireAniDBCredentials(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("user %s", cfg.AniDB.Username)}
}

// CheckAniDBServer verifies that the server address resolves. It sends no
// packets; AniDB counts every datagram against the client's rate budget.
func CheckAniDBServer(ctx context.Context, server string) Result {
	const name = "AniDB server"
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", server, err)}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupHost(lookupCtx, host)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: resolve: %v)", server, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s -> %s:%s", server, addrs[0], port)}
}
