package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool
}

// ParseFlags reads the server configuration from the command line. Every flag
// defaults to its SURVEY_* environment variable, which may come from a .env
// file in the working directory.
func ParseFlags() (cfg Config, err error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	LoadEnv()

	var host string
	fs.StringVar(&host, "host", Env("SURVEY_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(EnvInt("SURVEY_PORT", 8080)), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", Env("SURVEY_DB_URL", "surveys.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", Env("SURVEY_TOKEN_SECRET", ""), "secret key for token signing")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(EnvInt("SURVEY_TOKEN_TTL", 3600)), "token TTL in seconds")
	fs.BoolVar(&cfg.Debug, "debug", EnvBool("SURVEY_DEBUG", false), "log at DEBUG level")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

// LoadEnv loads a .env file when there is one. Variables already set in the
// environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

func Env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func EnvInt(key string, def int) int {
	n, err := strconv.Atoi(Env(key, ""))
	if err != nil {
		return def
	}
	return n
}

func EnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(Env(key, ""))
	if err != nil {
		return def
	}
	return b
}
