package config

import (
	"sort"
	"strings"
)

const allowedOriginsEnvVar = "ALLOWED_ORIGINS"

// CorsConfig names the origins, besides the console's own, whose pages may
// post to the console.
type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
}

type Cors struct {
	file []string
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[normaliseOrigin(origin)]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins reads a comma separated ALLOWED_ORIGINS, falling back to
// the allowed_origins list of the config file. Empty means same origin only.
func (c Cors) GetAllowedOrigins() AllowedOrigins {
	list := c.file
	if env := GetEnv(allowedOriginsEnvVar, ""); env != "" {
		list = strings.Split(env, ",")
	}

	origins := AllowedOrigins{}
	for _, origin := range list {
		if origin = normaliseOrigin(origin); origin != "" {
			origins[origin] = nullValue{}
		}
	}
	return origins
}

func normaliseOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
