package values

import (
	"fmt"
	"strings"

	"github.com/webui-adk/adkctl/pkg/ingress"
)

// Values is the recognized configuration surface for one webui-adk release.
// Anything outside this tree in a values file is ignored.
type Values struct {
	ReplicaCount int            `yaml:"replicaCount"`
	ReleaseName  string         `yaml:"releaseName"`
	Persistence  Persistence    `yaml:"persistence"`
	OpenWebUI    OpenWebUI      `yaml:"openWebUI"`
	ADKBackend   ADKBackend     `yaml:"adkBackend"`
	OllamaProxy  OllamaProxy    `yaml:"ollamaProxy"`
	Ingress      ingress.Config `yaml:"ingress"`
	Local        Local          `yaml:"local"`
	OAuth        OAuth          `yaml:"oauth"`
	Admin        Admin          `yaml:"admin"`
	NodeAffinity map[string]interface{} `yaml:"nodeAffinity"`
}

type Image struct {
	Repository string `yaml:"repository"`
	Tag        string `yaml:"tag"`
	PullPolicy string `yaml:"pullPolicy"`
}

func (i Image) Ref() string {
	if i.Tag == "" {
		return i.Repository
	}
	return fmt.Sprintf("%s:%s", i.Repository, i.Tag)
}

type Persistence struct {
	Enabled      bool     `yaml:"enabled"`
	StorageClass string   `yaml:"storageClass"`
	AccessModes  []string `yaml:"accessModes"`
	Size         string   `yaml:"size"`
}

type ServiceValues struct {
	Type string `yaml:"type"`
	Port int    `yaml:"port"`
}

type SSO struct {
	Enabled      bool   `yaml:"enabled"`
	ProviderName string `yaml:"providerName"`
}

type AdminBootstrap struct {
	AutoCreate bool `yaml:"autoCreate"`
}

type Auth struct {
	Enabled bool `yaml:"enabled"`
}

type OpenWebUI struct {
	Image   Image          `yaml:"image"`
	Service ServiceValues  `yaml:"service"`
	SSO     SSO            `yaml:"sso"`
	Admin   AdminBootstrap `yaml:"admin"`
	Auth    Auth           `yaml:"auth"`
}

type GCP struct {
	Project        string `yaml:"project"`
	Region         string `yaml:"region"`
	ServiceAccount string `yaml:"serviceAccount"`
}

type ADKBackend struct {
	Image Image             `yaml:"image"`
	Port  int               `yaml:"port"`
	GCP   GCP               `yaml:"gcp"`
	Env   map[string]string `yaml:"env"`
}

type OllamaProxy struct {
	Image    Image  `yaml:"image"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"logLevel"`
}

type Local struct {
	ExposeServices bool `yaml:"exposeServices"`
	HostNetwork    bool `yaml:"hostNetwork"`
}

type OAuth struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
}

type Admin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Validate checks the merged values before any manifest is rendered. Errors
// are ValidationErrors so the CLI can report them uniformly with ingress
// validation failures.
func (v *Values) Validate() error {
	if strings.TrimSpace(v.ReleaseName) == "" {
		return &ingress.ValidationError{Field: "releaseName", Reason: "must not be empty"}
	}
	if v.ReplicaCount < 0 {
		return &ingress.ValidationError{Field: "replicaCount", Reason: "must not be negative"}
	}
	if v.OpenWebUI.Service.Port <= 0 {
		return &ingress.ValidationError{Field: "openWebUI.service.port", Reason: "must be a positive port number"}
	}
	if v.ADKBackend.Port <= 0 {
		return &ingress.ValidationError{Field: "adkBackend.port", Reason: "must be a positive port number"}
	}
	if v.OllamaProxy.Port <= 0 {
		return &ingress.ValidationError{Field: "ollamaProxy.port", Reason: "must be a positive port number"}
	}
	if v.Persistence.Enabled && v.Persistence.Size == "" {
		return &ingress.ValidationError{Field: "persistence.size", Reason: "must not be empty when persistence is enabled"}
	}
	return v.IngressConfig().Validate()
}

// IngressConfig completes the ingress subtree with the fields that live
// elsewhere in the values: the release name and the service port the
// ingress routes to.
func (v *Values) IngressConfig() ingress.Config {
	cfg := v.Ingress
	cfg.ReleaseName = v.ReleaseName
	cfg.ServicePort = v.OpenWebUI.Service.Port
	return cfg
}
