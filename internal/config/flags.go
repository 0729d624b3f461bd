package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a backend address in format [host]:[port]
//	-s dev server listen address in format [host]:[port]
//	-d database file path
//	-c/-config json file path with configs
//	-log-file client log file
//	-request-timeout gateway request timeout (e.g., "10s")
//	-stub use the in-process stub backend
//	-stub-code fixed one-time code accepted by the stub
//	-token-sign-key stub token signing key
//	-token-duration stub token lifetime (e.g., "24h")
//	-seal-secret secret for at-rest value encryption
//	-ephemeral keep the store in memory
//	-send-attempts gateway calls per send
//	-send-backoff base delay between send attempts
//	-refresh-interval conversation refresh interval
//	-challenge-ttl one-time code lifetime
func ParseFlags() *StructuredConfig {
	var adapterAddress, serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var logFile string
	var requestTimeout time.Duration
	var stubEnabled bool
	var stubCode string
	var tokenSignKey string
	var tokenDuration time.Duration
	var sealSecret string
	var ephemeral bool
	var sendAttempts int
	var sendBackoff time.Duration
	var refreshInterval time.Duration
	var challengeTTL time.Duration

	flag.Var(&adapterAddress, "a", "Backend address host:port")
	flag.Var(&serverAddress, "s", "Dev server listen address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&logFile, "log-file", "", "Client log file")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 10s)")
	flag.BoolVar(&stubEnabled, "stub", false, "Use the in-process stub backend")
	flag.StringVar(&stubCode, "stub-code", "", "One-time code accepted by the stub")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Stub token signing key")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Stub token duration (e.g., 24h)")
	flag.StringVar(&sealSecret, "seal-secret", "", "Secret for at-rest encryption of stored values")
	flag.BoolVar(&ephemeral, "ephemeral", false, "Keep all data in memory")
	flag.IntVar(&sendAttempts, "send-attempts", 0, "Gateway calls per message send")
	flag.DurationVar(&sendBackoff, "send-backoff", 0, "Base delay between send attempts")
	flag.DurationVar(&refreshInterval, "refresh-interval", 0, "Open conversation refresh interval")
	flag.DurationVar(&challengeTTL, "challenge-ttl", 0, "One-time code lifetime")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			LogFile: logFile,
		},
		Adapter: Adapter{
			HTTPAddress:    adapterAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Stub: Stub{
			Enabled:       stubEnabled,
			Code:          stubCode,
			TokenSignKey:  tokenSignKey,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			SealSecret: sealSecret,
			Ephemeral:  ephemeral,
		},
		Sync: Sync{
			SendAttempts:    sendAttempts,
			SendBackoff:     sendBackoff,
			RefreshInterval: refreshInterval,
			ChallengeTTL:    challengeTTL,
		},
		Server: Server{
			HTTPAddress: serverAddress.String(),
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
