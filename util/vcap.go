package util

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Cloud Foundry hands bound services to the app as VCAP_SERVICES JSON: a map
// from service label to the instances bound under that label.

// VcapServices is the decoded VCAP_SERVICES document
type VcapServices map[string][]VcapService

// VcapService is one bound service instance. Only the fields the broker reads
// are decoded.
type VcapService struct {
	Name        string          `json:"name"`
	Credentials VcapCredentials `json:"credentials"`
}

// VcapCredentials holds a service's credentials block
type VcapCredentials map[string]interface{}

// ParseVcapServices decodes a VCAP_SERVICES value
func ParseVcapServices(data []byte) (VcapServices, error) {
	services := VcapServices{}
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, errors.Wrap(err, "decode VCAP_SERVICES")
	}
	return services, nil
}

// FindServiceByName searches every label for an instance called name
func (s VcapServices) FindServiceByName(name string) *VcapService {
	for _, instances := range s {
		for i := range instances {
			if instances[i].Name == name {
				return &instances[i]
			}
		}
	}
	return nil
}

// GetServiceNames lists every bound instance name, sorted
func (s VcapServices) GetServiceNames() []string {
	names := []string{}
	for _, instances := range s {
		for _, service := range instances {
			names = append(names, service.Name)
		}
	}
	sort.Strings(names)
	return names
}

// PostgresURL returns a connection URL for a Postgres binding. Brokers that
// publish a ready-made "uri" win; otherwise the URL is assembled from the
// hostname, port, name, username and password keys.
func (s VcapService) PostgresURL() (string, error) {
	if uri, err := s.Credentials.String("uri"); err == nil {
		return uri, nil
	}

	host, err := s.Credentials.String("hostname")
	if err != nil {
		return "", errors.Wrapf(err, "service %s has neither uri nor hostname", s.Name)
	}
	database, err := s.Credentials.String("name")
	if err != nil {
		return "", errors.Wrapf(err, "service %s", s.Name)
	}
	if port, err := s.Credentials.Int("port"); err == nil {
		host = host + ":" + strconv.Itoa(port)
	}

	dbURL := &url.URL{Scheme: "postgres", Host: host, Path: "/" + database}
	if user, err := s.Credentials.String("username"); err == nil {
		if password, err := s.Credentials.String("password"); err == nil {
			dbURL.User = url.UserPassword(user, password)
		} else {
			dbURL.User = url.User(user)
		}
	}
	return dbURL.String(), nil
}

// String reads a string credential
func (c VcapCredentials) String(key string) (string, error) {
	val, ok := c[key]
	if !ok {
		return "", fmt.Errorf("Credential key does not exist: %s", key)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("Could not convert value to string: key=%s, value=%v", key, val)
	}
	return str, nil
}

// Int reads an integer credential. JSON numbers decode as float64, and some
// brokers publish ports as strings, so both are accepted when whole.
func (c VcapCredentials) Int(key string) (int, error) {
	val, ok := c[key]
	if !ok {
		return 0, fmt.Errorf("Credential key does not exist: %s", key)
	}
	switch v := val.(type) {
	case int:
		return v, nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("Could not convert value to int: key=%s, value=%v", key, val)
}
