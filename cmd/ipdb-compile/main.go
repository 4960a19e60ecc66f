// Command ipdb-compile compiles the IPv4 and IPv6 range datasets into a
// database blob and its province/city dictionaries.
//
// Configuration comes from the environment (or .env):
//
//	SOURCE_V4_PATH, SOURCE_V6_PATH   input datasets, at least one
//	IPDB_PATH, DICT_PATH             outputs
//	DICT_GO_PATH, DICT_GO_PACKAGE    optional Go source export of the dictionaries
//	EXPORT_MYSQL, MYSQL_DSN          optional export of the ranges to MySQL
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/evyataryagoni/iplocation/internal/compiler"
	"github.com/evyataryagoni/iplocation/internal/config"
	"github.com/evyataryagoni/iplocation/internal/logger"
	"github.com/evyataryagoni/iplocation/internal/store"
)

func main() {
	appConfig, err := config.Load()
	if err == nil {
		err = appConfig.ValidateCompile()
	}
	if err != nil {
		logger.NewDefault().Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	if err := run(appConfig, log); err != nil {
		log.Fatal().Err(err).Msg("Compilation failed")
	}
}

// run compiles the configured sources and writes every configured output
func run(appConfig *config.Config, log *logger.Logger) error {
	v4, closeV4, err := openSource(appConfig.SourceV4Path)
	if err != nil {
		return err
	}
	defer closeV4()
	v6, closeV6, err := openSource(appConfig.SourceV6Path)
	if err != nil {
		return err
	}
	defer closeV6()

	res, err := compiler.New(log).Compile(v4, v6)
	if err != nil {
		return err
	}

	if err := res.WriteFiles(appConfig.IPDBPath, appConfig.DictPath); err != nil {
		return err
	}
	log.Info().
		Str("ipdb_path", appConfig.IPDBPath).
		Str("dict_path", appConfig.DictPath).
		Msg("Database written")

	if appConfig.DictGoPath != "" {
		if err := res.WriteGo(appConfig.DictGoPath, appConfig.DictGoPackage); err != nil {
			return err
		}
		log.Info().Str("path", appConfig.DictGoPath).Msg("Go dictionaries written")
	}

	if appConfig.ExportMySQL {
		mysqlStore, err := store.NewMySQLStore(appConfig.MySQLDSN, res.Dictionaries, nil)
		if err != nil {
			return err
		}
		defer mysqlStore.Close()

		if err := mysqlStore.Migrate(); err != nil {
			return err
		}
		if err := res.ExportMySQL(mysqlStore); err != nil {
			return err
		}
		log.Info().
			Int("rows", len(res.V4)+len(res.V6)).
			Msg("Ranges exported to MySQL")
	}
	return nil
}

// openSource opens a dataset. An empty path yields no reader.
func openSource(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	return f, func() { f.Close() }, nil
}
