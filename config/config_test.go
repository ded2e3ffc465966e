// config_test.go - Clock audit configuration tests.
// Copyright (C) 2017  Yawning Angel
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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	require := require.New(t)

	_, err := Load(nil)
	require.Error(err, "Load() with nil config")

	const basicConfig = `# A basic configuration example.
[Logging]
Level = "debug"

[Sampler]
Workers = 16
Samples = 50000
IntervalMillis = 2
UseKeyedStorage = true

[Store]
Path = "/var/lib/clockcheck/anomalies.db"

[Metrics]
Address = "127.0.0.1:6543"

[NTP]
Server = "time.example.org"
MaxOffsetMillis = 50
`

	cfg, err := Load([]byte(basicConfig))
	require.NoError(err, "Load() with basic config")
	require.Equal("DEBUG", cfg.Logging.Level)
	require.Equal(16, cfg.Sampler.Workers)
	require.Equal(50000, cfg.Sampler.Samples)
	require.Equal(2, cfg.Sampler.IntervalMillis)
	require.Equal(defaultSystemTolerance, cfg.Sampler.SystemToleranceMillis)
	require.True(cfg.Sampler.UseKeyedStorage)
	require.Equal("/var/lib/clockcheck/anomalies.db", cfg.Store.Path)
	require.Equal("127.0.0.1:6543", cfg.Metrics.Address)
	require.Equal("time.example.org", cfg.NTP.Server)
	require.Equal(50, cfg.NTP.MaxOffsetMillis)
	require.Equal(defaultNTPTimeout, cfg.NTP.TimeoutMillis)
}

func TestDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := Load([]byte(""))
	require.NoError(err)
	require.Equal(defaultLogLevel, cfg.Logging.Level)
	require.Equal(defaultWorkers, cfg.Sampler.Workers)
	require.Equal(defaultSamples, cfg.Sampler.Samples)
	require.Equal(defaultStorePath, cfg.Store.Path)
	require.Empty(cfg.Metrics.Address)
	require.Equal(defaultNTPServer, cfg.NTP.Server)

	require.Equal(cfg, Default())
}

func TestInvalid(t *testing.T) {
	require := require.New(t)

	for _, body := range []string{
		"[Logging]\nLevel = \"LOUD\"\n",
		"[Logging]\nFile = \"relative.log\"\n",
		"[Sampler]\nWorkers = -1\n",
		"[Sampler]\nWorkers = 100000\n",
		"[Sampler]\nSamples = -5\n",
		"[Sampler]\nIntervalMillis = -5\n",
		"[Sampler]\nSystemToleranceMillis = -5\n",
		"[Metrics]\nAddress = \"nope\"\n",
		"[NTP]\nTimeoutMillis = -1\n",
		"[NTP]\nMaxOffsetMillis = -1\n",
		"[Sampler]\nThreads = 4\n",
		"[Sampler\n",
	} {
		_, err := Load([]byte(body))
		require.Error(err, "%q", body)
	}
}

func TestLoadFile(t *testing.T) {
	require := require.New(t)

	f := filepath.Join(t.TempDir(), "clockcheck.toml")
	_, err := LoadFile(f)
	require.Error(err)

	require.NoError(os.WriteFile(f, []byte("[Sampler]\nWorkers = 2\n"), 0600))
	cfg, err := LoadFile(f)
	require.NoError(err)
	require.Equal(2, cfg.Sampler.Workers)
}
