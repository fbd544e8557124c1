package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/imamik/symphonyctl/internal/topology"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their config key rather than the Go field name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks struct constraints and then the rules that span fields.
// Every failure is a *topology.ConfigError naming the offending key.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	if err := c.validateBackend(); err != nil {
		return err
	}

	if c.Symphony.Admin.User == "root" {
		return &topology.ConfigError{Field: "symphony.admin.user", Message: "must not be root"}
	}

	// A malformed override fails here, before any bootstrap step runs.
	if o := c.ManualOverride(); o != nil {
		if _, err := o.Topology(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateBackend() error {
	d := c.Discovery
	missing := func(field string) error {
		return &topology.ConfigError{
			Field:   "discovery." + d.Backend + "." + field,
			Message: fmt.Sprintf("is required for the %s backend", d.Backend),
		}
	}

	// The override makes discovery unnecessary, so backend settings may be absent.
	if c.ManualOverride() != nil {
		return nil
	}

	switch d.Backend {
	case BackendStatic:
		if d.Static.Path == "" {
			return missing("path")
		}
	case BackendHCloud:
		if d.HCloud.Token == "" {
			return missing("token")
		}
	case BackendS3:
		if d.S3.Bucket == "" {
			return missing("bucket")
		}
		if (d.S3.AccessKey == "") != (d.S3.SecretKey == "") {
			return &topology.ConfigError{Field: "discovery.s3.secret_key", Message: "access_key and secret_key must be set together"}
		}
	case BackendHTTP:
		if d.HTTP.BaseURL == "" {
			return missing("base_url")
		}
	}
	return nil
}

// formatValidationError turns the first validator failure into a ConfigError.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	field := e.Namespace()
	// Drop the root struct name.
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	var msg string
	switch e.Tag() {
	case "required", "required_if":
		msg = "is required"
	case "min", "gte":
		msg = "must be at least " + e.Param()
	case "max":
		msg = "must not exceed " + e.Param()
	case "gt":
		msg = "must be greater than " + e.Param()
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s], got %q", e.Param(), fmt.Sprint(e.Value()))
	case "startswith":
		msg = fmt.Sprintf("must start with %q", e.Param())
	case "ipv4":
		msg = "must be an IPv4 address"
	case "url":
		msg = "must be a URL"
	default:
		msg = fmt.Sprintf("validation failed (%s)", e.Tag())
	}
	return &topology.ConfigError{Field: field, Message: msg}
}
