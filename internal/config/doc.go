// Package config manages user-level settings stored at ~/.pytemplate/config.yaml.
// Values may be overridden with PYTEMPLATE_* environment variables, e.g.
// PYTEMPLATE_DEFAULT_BRANCH or PYTEMPLATE_PUBLISH_TIMEOUT.
package config
