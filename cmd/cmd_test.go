package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestDataProvider []struct {
	description string
	args        []string
	expectedOut string
}

func executeRoot(args []string) string {
	buff := new(bytes.Buffer)

	cmd := createRootCmd()
	cmd.SetOut(buff)
	cmd.SetErr(buff)
	cmd.SetArgs(args)
	cmd.Execute()

	return buff.String()
}

func TestIngestCmd(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			rw.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(rw, `[{"id":1,"name":"Ann","email":"a@x.com"}]`)
	}))
	defer api.Close()

	out := filepath.Join(t.TempDir(), "users.csv")

	cases := TestDataProvider{
		{
			description: "Should export the users list to CSV",
			args:        []string{"ingest", "--api", api.URL + "/users", "--out", out},
			expectedOut: "wrote " + out,
		},
		{
			description: "Should fail when the API answers with an error",
			args:        []string{"ingest", "--api", api.URL + "/broken", "--out", out},
			expectedOut: "unexpected status 500",
		},
		{
			description: "Should NOT accept an unknown upload scheme",
			args:        []string{"ingest", "--api", api.URL + "/users", "--out", out, "--upload", "ftp://bucket/x"},
			expectedOut: "invalid upload target",
		},
		{
			description: "Should NOT accept positional args",
			args:        []string{"ingest", "users"},
			expectedOut: "unknown command",
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			actualOut := executeRoot(c.args)
			if !strings.Contains(actualOut, c.expectedOut) {
				t.Errorf("Expected: \n\"%s\" \nTo contain: \n\"%s\"", actualOut, c.expectedOut)
			}
		})
	}

	content, err := os.ReadFile(out)
	require.Nil(t, err)
	assert.Equal(t, "email,id,name\na@x.com,1,Ann\n", string(content))
}

func TestIngestCmdReadsEnv(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprint(rw, `[{"id":7}]`)
	}))
	defer api.Close()

	out := filepath.Join(t.TempDir(), "env.csv")
	t.Setenv("API", api.URL)
	t.Setenv("OUT", out)

	actualOut := executeRoot([]string{"ingest"})
	assert.Contains(t, actualOut, "wrote "+out)
}

func TestServiceCmdRejectsUnknownService(t *testing.T) {
	cases := TestDataProvider{
		{
			description: "Should NOT start an unknown service",
			args:        []string{"service", "billing"},
			expectedOut: "invalid argument \"billing\"",
		},
		{
			description: "Should require a service name",
			args:        []string{"service"},
			expectedOut: "accepts 1 arg(s), received 0",
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			assert.Contains(t, executeRoot(c.args), c.expectedOut)
		})
	}
}

func TestResolveServiceConfig(t *testing.T) {
	t.Run("users default to MySQL", func(t *testing.T) {
		config, err := serviceConfig("users")
		require.Nil(t, err)

		assert.Equal(t, 5001, config.Listener.Port)
		assert.Equal(t, "mysql", config.Storage.Driver)
		assert.Equal(t, "localhost", config.Storage.Host)
		assert.Equal(t, "db_usuarios", config.Storage.Name)
		assert.Equal(t, 3306, config.Storage.Port)
		assert.True(t, config.Storage.AutoMigrate)
	})

	t.Run("patients read the PG variables", func(t *testing.T) {
		t.Setenv("PG_HOST", "pg.internal")
		t.Setenv("PG_PORT", "6543")
		t.Setenv("PORT", "7002")

		config, err := serviceConfig("patients")
		require.Nil(t, err)

		assert.Equal(t, 7002, config.Listener.Port)
		assert.Equal(t, "postgres", config.Storage.Driver)
		assert.Equal(t, "pg.internal", config.Storage.Host)
		assert.Equal(t, 6543, config.Storage.Port)
		assert.Equal(t, "medical_db", config.Storage.Name)
	})

	t.Run("exams default to sqlite", func(t *testing.T) {
		config, err := serviceConfig("exams")
		require.Nil(t, err)

		assert.Equal(t, "sqlite", config.Storage.Driver)
		assert.Equal(t, "data/exams.db", config.Storage.Path)
	})

	t.Run("exams driver prefers EXAMS_DB_DRIVER", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mysql")
		t.Setenv("EXAMS_DB_DRIVER", "postgres")
		t.Setenv("EXAMS_DB_HOST", "exams.internal")

		config, err := serviceConfig("exams")
		require.Nil(t, err)

		assert.Equal(t, "postgres", config.Storage.Driver)
		assert.Equal(t, "exams.internal", config.Storage.Host)
	})

	t.Run("unknown driver is rejected", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "oracle")

		_, err := serviceConfig("users")
		assert.NotNil(t, err)
	})
}

func TestDevConfig(t *testing.T) {
	savedIsDevEnv := isDevEnv
	defer func() {
		isDevEnv = savedIsDevEnv
	}()
	isDevEnv = true

	config, err := serviceConfig("users")
	require.Nil(t, err)
	assert.Equal(t, "sqlite", config.Storage.Driver)
	assert.Equal(t, "dev/data/users.db", config.Storage.Path)

	viperConfig, err := newConfig("aggregator")
	require.Nil(t, err)

	aggConfig, port, err := resolveAggregatorConfig(viperConfig)
	require.Nil(t, err)
	assert.Equal(t, 5004, port)
	require.Len(t, aggConfig.Environments, 1)
	assert.Equal(t, "local", aggConfig.Environments[0].Name)
}

func TestResolveAggregatorConfig(t *testing.T) {
	t.Setenv("MS2_PROD1", "http://patients.prod1:5002")
	t.Setenv("AGGREGATOR_TIMEOUT", "2s")

	viperConfig, err := newConfig("aggregator")
	require.Nil(t, err)

	aggConfig, port, err := resolveAggregatorConfig(viperConfig)
	require.Nil(t, err)

	assert.Equal(t, 5004, port)
	assert.Equal(t, 2*time.Second, aggConfig.Timeout)
	require.Len(t, aggConfig.Environments, 2)

	prod1 := aggConfig.Environments[0]
	assert.Equal(t, "prod1", prod1.Name)
	assert.Equal(t, "http://172.31.10.11:5001", prod1.Users)
	assert.Equal(t, "http://patients.prod1:5002", prod1.Patients)
	assert.Equal(t, "prod2", aggConfig.Environments[1].Name)
}

func TestResolveAggregatorConfigRejectsBadURL(t *testing.T) {
	t.Setenv("MS3_PROD2", "not a url")

	viperConfig, err := newConfig("aggregator")
	require.Nil(t, err)

	_, _, err = resolveAggregatorConfig(viperConfig)
	assert.NotNil(t, err)
}
