// config.go - Clock audit configuration.
// Copyright (C) 2017  Yawning Angel.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config provides the clockcheck configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	defaultLogLevel        = "NOTICE"
	defaultWorkers         = 4
	defaultSamples         = 1000
	defaultSystemTolerance = 1000 // 1 sec.
	defaultStorePath       = "clockcheck.db"
	defaultNTPServer       = "pool.ntp.org"
	defaultNTPTimeout      = 5000 // 5 sec.
	defaultNTPMaxOffset    = 500  // 500 ms.

	maxWorkers = 4096
)

var defaultLogging = Logging{
	Disable: false,
	File:    "",
	Level:   defaultLogLevel,
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stdout will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToUpper(lCfg.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
	}
	lCfg.Level = lvl // Force uppercase.
	if lCfg.File != "" && !filepath.IsAbs(lCfg.File) {
		return fmt.Errorf("config: Logging: File '%v' is not an absolute path", lCfg.File)
	}
	return nil
}

// Sampler is the clock sampler configuration.
type Sampler struct {
	// Workers is the number of concurrently sampling goroutines.
	Workers int

	// Samples is the number of readings of each clock taken per worker.
	Samples int

	// IntervalMillis is the delay between two readings in milliseconds.
	IntervalMillis int

	// SystemToleranceMillis is how far the system clock may step backward
	// between two readings before it is recorded as an anomaly.
	SystemToleranceMillis int

	// UseKeyedStorage selects the keyed goroutine local storage, with every
	// worker supplying its own allocator.
	UseKeyedStorage bool
}

func (sCfg *Sampler) applyDefaults() {
	if sCfg.Workers == 0 {
		sCfg.Workers = defaultWorkers
	}
	if sCfg.Samples == 0 {
		sCfg.Samples = defaultSamples
	}
	if sCfg.SystemToleranceMillis == 0 {
		sCfg.SystemToleranceMillis = defaultSystemTolerance
	}
}

func (sCfg *Sampler) validate() error {
	if sCfg.Workers < 0 || sCfg.Workers > maxWorkers {
		return fmt.Errorf("config: Sampler: Workers %v is out of range", sCfg.Workers)
	}
	if sCfg.Samples < 0 {
		return fmt.Errorf("config: Sampler: Samples %v is invalid", sCfg.Samples)
	}
	if sCfg.IntervalMillis < 0 {
		return fmt.Errorf("config: Sampler: IntervalMillis %v is invalid", sCfg.IntervalMillis)
	}
	if sCfg.SystemToleranceMillis < 0 {
		return fmt.Errorf("config: Sampler: SystemToleranceMillis %v is invalid", sCfg.SystemToleranceMillis)
	}
	return nil
}

// Store is the anomaly store configuration.
type Store struct {
	// Disable disables recording anomalies to disk.
	Disable bool

	// Path is the path of the anomaly database.
	Path string
}

func (stCfg *Store) applyDefaults() {
	if stCfg.Path == "" {
		stCfg.Path = defaultStorePath
	}
}

// Metrics is the Prometheus metrics configuration.
type Metrics struct {
	// Address is the address to serve /metrics on.  Metrics are not served
	// if it is empty.
	Address string
}

func (mCfg *Metrics) validate() error {
	if mCfg.Address == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(mCfg.Address); err != nil {
		return fmt.Errorf("config: Metrics: Address '%v' is invalid: %v", mCfg.Address, err)
	}
	return nil
}

// NTP is the configuration of the system clock offset check.
type NTP struct {
	// Server is the NTP server to query.
	Server string

	// TimeoutMillis is the query timeout in milliseconds.
	TimeoutMillis int

	// MaxOffsetMillis is the largest tolerated offset of the system clock
	// from the server's clock in milliseconds.
	MaxOffsetMillis int
}

func (nCfg *NTP) applyDefaults() {
	if nCfg.Server == "" {
		nCfg.Server = defaultNTPServer
	}
	if nCfg.TimeoutMillis == 0 {
		nCfg.TimeoutMillis = defaultNTPTimeout
	}
	if nCfg.MaxOffsetMillis == 0 {
		nCfg.MaxOffsetMillis = defaultNTPMaxOffset
	}
}

func (nCfg *NTP) validate() error {
	if nCfg.TimeoutMillis < 0 {
		return fmt.Errorf("config: NTP: TimeoutMillis %v is invalid", nCfg.TimeoutMillis)
	}
	if nCfg.MaxOffsetMillis < 0 {
		return fmt.Errorf("config: NTP: MaxOffsetMillis %v is invalid", nCfg.MaxOffsetMillis)
	}
	return nil
}

// Config is the top level clockcheck configuration.
type Config struct {
	Logging *Logging
	Sampler *Sampler
	Store   *Store
	Metrics *Metrics
	NTP     *NTP
}

// FixupAndValidate applies defaults to config entries and validates the
// supplied configuration.  Most people should call one of the Load variants
// instead.
func (cfg *Config) FixupAndValidate() error {
	// Every section is optional.
	if cfg.Logging == nil {
		l := defaultLogging
		cfg.Logging = &l
	}
	if cfg.Sampler == nil {
		cfg.Sampler = &Sampler{}
	}
	if cfg.Store == nil {
		cfg.Store = &Store{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &Metrics{}
	}
	if cfg.NTP == nil {
		cfg.NTP = &NTP{}
	}

	if err := cfg.Logging.validate(); err != nil {
		return err
	}
	if err := cfg.Sampler.validate(); err != nil {
		return err
	}
	if err := cfg.NTP.validate(); err != nil {
		return err
	}
	cfg.Sampler.applyDefaults()
	cfg.Store.applyDefaults()
	cfg.NTP.applyDefaults()
	return cfg.Metrics.validate()
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		panic("BUG: default config is invalid: " + err.Error())
	}
	return cfg
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	if b == nil {
		return nil, errors.New("config: no nil buffer as config file")
	}

	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
