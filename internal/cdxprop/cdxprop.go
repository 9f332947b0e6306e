// Package cdxprop stores mapping pass annotations as CycloneDX component
// properties under a shared namespace.
package cdxprop

import (
	"strings"

	"github.com/CycloneDX/cyclonedx-go"
)

// Namespace prefixes every property name written by the passes.
const Namespace = "srcmap:"

func propName(key string) string {
	return Namespace + key
}

// Get returns the value stored under key, if any.
func Get(c *cyclonedx.Component, key string) (string, bool) {
	if c == nil || c.Properties == nil {
		return "", false
	}
	name := propName(key)
	for _, p := range *c.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Set stores value under key, replacing an existing value in place so
// repeated writes never duplicate the property.
func Set(c *cyclonedx.Component, key, value string) {
	name := propName(key)
	if c.Properties == nil {
		c.Properties = &[]cyclonedx.Property{}
	}
	props := *c.Properties
	for i := range props {
		if props[i].Name == name {
			props[i].Value = value
			return
		}
	}
	*c.Properties = append(props, cyclonedx.Property{Name: name, Value: value})
}

// All returns every namespaced property on c keyed without the namespace.
func All(c *cyclonedx.Component) map[string]string {
	out := map[string]string{}
	if c == nil || c.Properties == nil {
		return out
	}
	for _, p := range *c.Properties {
		if key, ok := strings.CutPrefix(p.Name, Namespace); ok {
			out[key] = p.Value
		}
	}
	return out
}
