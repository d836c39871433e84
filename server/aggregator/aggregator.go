package aggregator

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const sampleSize = 3

// Environment is one deployment of the three entity services.
type Environment struct {
	Name     string
	Users    string
	Patients string
	Exams    string
}

// Config is read once at startup and never changed afterwards.
type Config struct {
	Environments []Environment
	Timeout      time.Duration
}

// DefaultConfig is the environment table used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
		Environments: []Environment{
			{
				Name:     "prod1",
				Users:    "http://172.31.10.11:5001",
				Patients: "http://172.31.10.11:5002",
				Exams:    "http://172.31.10.11:5003",
			},
			{
				Name:     "prod2",
				Users:    "http://172.31.11.11:5001",
				Patients: "http://172.31.11.11:5002",
				Exams:    "http://172.31.11.11:5003",
			},
		},
	}
}

// InvalidEnvironmentError is returned for an environment name that is not
// configured. No downstream call is made in that case.
type InvalidEnvironmentError struct {
	Name string
}

func (e *InvalidEnvironmentError) Error() string {
	return "invalid environment: " + e.Name
}

// Observer is told about the outcome of every downstream call.
type Observer interface {
	ObserveUpstream(environment, upstream string, err error)
}

type Summary struct {
	Environment    string            `json:"environment"`
	UsersSample    []json.RawMessage `json:"users_sample"`
	PatientsSample []json.RawMessage `json:"patients_sample"`
	ExamsSample    []json.RawMessage `json:"exams_sample"`
	Status         string            `json:"status"`
}

// Counts holds either the list sizes of one environment or the error that
// prevented reading them.
type Counts struct {
	Users    *int   `json:"users,omitempty"`
	Patients *int   `json:"patients,omitempty"`
	Exams    *int   `json:"exams,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Aggregator struct {
	config   Config
	client   *http.Client
	observer Observer
}

func New(config Config, client *http.Client, observer Observer) *Aggregator {
	if client == nil {
		client = http.DefaultClient
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	environments := make([]Environment, len(config.Environments))
	copy(environments, config.Environments)
	config.Environments = environments

	return &Aggregator{config: config, client: client, observer: observer}
}

// Environments lists the configured environment names in table order.
func (a *Aggregator) Environments() []string {
	names := make([]string, 0, len(a.config.Environments))
	for _, env := range a.config.Environments {
		names = append(names, env.Name)
	}

	return names
}

func (a *Aggregator) DefaultEnvironment() string {
	if len(a.config.Environments) == 0 {
		return ""
	}

	return a.config.Environments[0].Name
}

// Aggregate samples the three services of env. Any failing call fails the
// whole aggregate.
func (a *Aggregator) Aggregate(ctx context.Context, env string) (*Summary, error) {
	environment, ok := a.lookup(env)
	if !ok {
		return nil, &InvalidEnvironmentError{Name: env}
	}

	lists, err := a.fetchAll(ctx, environment)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Environment:    environment.Name,
		UsersSample:    sample(lists.users),
		PatientsSample: sample(lists.patients),
		ExamsSample:    sample(lists.exams),
		Status:         "aggregated",
	}, nil
}

// Compare counts the records of every environment. A failure only affects the
// entry of the environment it happened in.
func (a *Aggregator) Compare(ctx context.Context) map[string]Counts {
	result := make(map[string]Counts, len(a.config.Environments))

	for _, environment := range a.config.Environments {
		lists, err := a.fetchAll(ctx, environment)
		if err != nil {
			result[environment.Name] = Counts{Error: err.Error()}
			continue
		}

		users, patients, exams := len(lists.users), len(lists.patients), len(lists.exams)
		result[environment.Name] = Counts{Users: &users, Patients: &patients, Exams: &exams}
	}

	return result
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

type serviceLists struct {
	users    []json.RawMessage
	patients []json.RawMessage
	exams    []json.RawMessage
}

func (a *Aggregator) lookup(name string) (Environment, bool) {
	for _, env := range a.config.Environments {
		if env.Name == name {
			return env, true
		}
	}

	return Environment{}, false
}

// fetchAll reads the three list endpoints of environment in parallel. The
// first failure cancels the calls still in flight.
func (a *Aggregator) fetchAll(ctx context.Context, environment Environment) (serviceLists, error) {
	var lists serviceLists
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		lists.users, err = a.fetchList(gctx, environment.Name, "users", environment.Users)
		return err
	})
	g.Go(func() (err error) {
		lists.patients, err = a.fetchList(gctx, environment.Name, "patients", environment.Patients)
		return err
	})
	g.Go(func() (err error) {
		lists.exams, err = a.fetchList(gctx, environment.Name, "exams", environment.Exams)
		return err
	})

	if err := g.Wait(); err != nil {
		return serviceLists{}, err
	}

	return lists, nil
}

func (a *Aggregator) fetchList(ctx context.Context, env, service, baseURL string) ([]json.RawMessage, error) {
	items, err := a.get(ctx, strings.TrimRight(baseURL, "/")+"/"+service)
	if a.observer != nil {
		a.observer.ObserveUpstream(env, service, err)
	}

	return items, err
}

func (a *Aggregator) get(ctx context.Context, url string) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, errors.Wrapf(err, "GET %s: response is not a JSON array", url)
	}

	// a literal null decodes without error
	if items == nil {
		return nil, errors.Errorf("GET %s: response is not a JSON array", url)
	}

	return items, nil
}

func sample(items []json.RawMessage) []json.RawMessage {
	if len(items) > sampleSize {
		items = items[:sampleSize]
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	return items
}
