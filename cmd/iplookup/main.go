// Command iplookup prints the location of one IP address.
//
//	$ iplookup 8.8.8.8
//	Query: 8.8.8.8  --> California,Mountain View US
//
// The database and dictionaries are read from IPDB_PATH and DICT_PATH.
package main

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/evyataryagoni/iplocation/internal/config"
	"github.com/evyataryagoni/iplocation/internal/logger"
	"github.com/evyataryagoni/iplocation/internal/store"
)

const usage = `
    Example:
        $ iplookup 8.8.8.8
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit status. A missing or invalid address prints
// the usage and is not an error.
func run(args []string, stdout io.Writer) int {
	addr, ok := parseArgs(args)
	if !ok {
		fmt.Fprint(stdout, usage, "\n")
		return 0
	}

	log := logger.New(logger.Config{Level: "error", Pretty: true, Output: os.Stderr})

	appConfig, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	blobStore, err := store.NewBlobStore(appConfig.IPDBPath, appConfig.DictPath, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database")
		return 1
	}
	defer blobStore.Close()
	if err := blobStore.Err(); err != nil {
		log.Warn().Err(err).Msg("Database failed validation")
	}

	return query(blobStore, addr, stdout)
}

// parseArgs returns the address in the first argument; the rest are ignored.
// Zoned IPv6 addresses are not accepted.
func parseArgs(args []string) (netip.Addr, bool) {
	if len(args) < 1 {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(args[0])
	if err != nil || addr.Zone() != "" {
		return netip.Addr{}, false
	}
	return addr, true
}

// query prints one lookup result
func query(s store.Store, addr netip.Addr, stdout io.Writer) int {
	location, err := s.FindByIP(addr)
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "Query: %s  --> %s\n", addr, location)
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintf(stdout, "Query: %s  --> Unknown\n", addr)
	default:
		fmt.Fprintf(stdout, "Query: %s  --> error: %v\n", addr, err)
		return 1
	}
	return 0
}
