package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ExplorerURLKey is the endpoint of the esplora REST API used to sync
	// wallets. Defaults to a public explorer of the configured network.
	ExplorerURLKey = "EXPLORER_URL"
	// ExplorerRequestsPerSecondKey is the max number of requests per second
	// sent to the explorer.
	ExplorerRequestsPerSecondKey = "EXPLORER_REQUESTS_PER_SECOND"
	// ExplorerRequestTimeoutKey are the seconds to wait for HTTP responses
	// before timeouts.
	ExplorerRequestTimeoutKey = "EXPLORER_REQUEST_TIMEOUT"
	// NetworkKey is the network addresses are encoded for. One of mainnet,
	// testnet, regtest or signet.
	NetworkKey = "NETWORK"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch wallet cache type between those supported.
	DBTypeKey = "DB_TYPE"
	// GapLimitKey is the number of consecutive unused addresses after which
	// a sync stops scanning a branch.
	GapLimitKey = "GAP_LIMIT"
	// IncludeUnconfirmedKey makes the wallet balance count unconfirmed
	// outputs too.
	IncludeUnconfirmedKey = "INCLUDE_UNCONFIRMED"
	// SyncIntervalKey is the interval in seconds between syncs in watch mode.
	SyncIntervalKey = "SYNC_INTERVAL"
	// MetricsAddrKey is the <host:port> address where prometheus metrics are
	// served in watch mode. Metrics are not served if empty.
	MetricsAddrKey = "METRICS_ADDR"
	// DatadirKey is the local data directory where the .env file and stats
	// are looked up and stored.
	DatadirKey = "DATADIR"
	// EnableProfilerKey enables the periodic memory statistics in watch mode.
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval in seconds for printing memory
	// statistics.
	StatsIntervalKey = "STATS_INTERVAL"

	ProfilerLocation = "stats"

	envFile = ".env"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
	NetworkSignet  = "signet"

	DBInMemory = "inmemory"
	DBBadger   = "badger"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("watchonly", false)

	networks = map[string]*chaincfg.Params{
		NetworkMainnet: &chaincfg.MainNetParams,
		NetworkTestnet: &chaincfg.TestNet3Params,
		NetworkRegtest: &chaincfg.RegressionNetParams,
		NetworkSignet:  &chaincfg.SigNetParams,
	}
	defaultExplorerURLs = map[string]string{
		NetworkMainnet: "https://blockstream.info/api",
		NetworkTestnet: "https://blockstream.info/testnet/api",
		NetworkRegtest: "http://localhost:3000",
		NetworkSignet:  "https://mempool.space/signet/api",
	}
	dbTypes = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
	}
)

// InitConfig loads the .env files of the working directory and of the
// datadir, if any, and reads the WATCHONLY_ prefixed environment.
func InitConfig() error {
	if err := loadEnvFile(envFile); err != nil {
		return fmt.Errorf("error while loading %s file: %s", envFile, err)
	}

	vip = viper.New()
	vip.SetEnvPrefix("WATCHONLY")
	vip.AutomaticEnv()

	vip.SetDefault(NetworkKey, NetworkTestnet)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBInMemory)
	vip.SetDefault(GapLimitKey, 20)
	vip.SetDefault(ExplorerRequestsPerSecondKey, 10)
	vip.SetDefault(ExplorerRequestTimeoutKey, 15)
	vip.SetDefault(IncludeUnconfirmedKey, false)
	vip.SetDefault(SyncIntervalKey, 60)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	datadirEnv := filepath.Join(GetDatadir(), envFile)
	if err := loadEnvFile(datadirEnv); err != nil {
		return fmt.Errorf("error while loading %s file: %s", datadirEnv, err)
	}

	if explorerURL, ok := defaultExplorerURLs[GetString(NetworkKey)]; ok {
		vip.SetDefault(ExplorerURLKey, explorerURL)
	}

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if GetBool(EnableProfilerKey) {
		if err := makeDirectoryIfNotExists(
			filepath.Join(GetDatadir(), ProfilerLocation),
		); err != nil {
			return fmt.Errorf("error while creating datadir: %s", err)
		}
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetSeconds returns the value of the given key as a number of seconds.
func GetSeconds(key string) time.Duration {
	return time.Duration(GetInt(key)) * time.Second
}

// GetNetworkParams returns the chain params of the configured network.
func GetNetworkParams() *chaincfg.Params {
	return networks[GetString(NetworkKey)]
}

// Keys returns the sorted list of all supported config keys.
func Keys() []string {
	keys := []string{
		ExplorerURLKey, ExplorerRequestsPerSecondKey, ExplorerRequestTimeoutKey,
		NetworkKey, LogLevelKey, DBTypeKey, GapLimitKey, IncludeUnconfirmedKey,
		SyncIntervalKey, MetricsAddrKey, DatadirKey, EnableProfilerKey,
		StatsIntervalKey,
	}
	sort.Strings(keys)
	return keys
}

func validate() error {
	if len(GetDatadir()) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	network := GetString(NetworkKey)
	if _, ok := networks[network]; !ok {
		return fmt.Errorf(
			"%s must be one of %s, %s, %s, %s",
			NetworkKey, NetworkMainnet, NetworkTestnet, NetworkRegtest, NetworkSignet,
		)
	}

	if _, ok := dbTypes[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("%s must be one of %s, %s", DBTypeKey, DBInMemory, DBBadger)
	}

	explorerURL := GetString(ExplorerURLKey)
	if len(explorerURL) <= 0 {
		return fmt.Errorf("missing explorer url")
	}
	u, err := url.Parse(explorerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be a valid http(s) url", ExplorerURLKey)
	}

	for _, key := range []string{
		GapLimitKey, ExplorerRequestsPerSecondKey, ExplorerRequestTimeoutKey,
		SyncIntervalKey, StatsIntervalKey,
	} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number", key)
		}
	}

	level := GetInt(LogLevelKey)
	if level < 0 || level > 6 {
		return fmt.Errorf("%s must be in range [0, 6]", LogLevelKey)
	}

	return nil
}

// loadEnvFile sets the variables of the given .env file that are not already
// part of the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
