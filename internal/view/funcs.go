//
//  internal/view/funcs.go
//
//  Template functions that expose Context fields with short, ergonomic
//  names so HTML authors do not poke through nested structs:
//
//	{{ domainName .Ctx }}  {{ with domainFeature .Ctx }}…{{ end }}
//	{{ browser .Ctx }} {{ browserVersion .Ctx }}
//	{{ device .Ctx }} {{ clientIP .Ctx }} {{ country .Ctx }}
//	{{ if isBot .Ctx }}Robot!{{ end }}
//

package view

import "html/template"

// FuncMap returns the helpers registered on every parsed set.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		// Domain helpers
		"domainName": func(c *Context) string {
			if c == nil {
				return ""
			}
			return c.Domain.Header
		},
		"domainFeature": func(c *Context) string {
			if c == nil || c.Domain.Entry == nil {
				return ""
			}
			return c.Domain.Entry.Value
		},
		"segment": func(c *Context) string {
			if c == nil {
				return ""
			}
			return c.Segment
		},

		// Request-info helpers
		"clientIP": func(c *Context) string {
			if c == nil || c.Info == nil || c.Info.Geo.IP == nil {
				return ""
			}
			return c.Info.Geo.IP.String()
		},
		"country": func(c *Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.Geo.CountryISO
		},
		"browser": func(c *Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.UA.Browser
		},
		"browserVersion": func(c *Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.UA.Version
		},
		"os": func(c *Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.UA.OS
		},
		"device": func(c *Context) string {
			if c == nil || c.Info == nil {
				return ""
			}
			return c.Info.UA.Device
		},
		"isBot": func(c *Context) bool {
			return c != nil && c.Info != nil && c.Info.UA.IsBot
		},
	}
}
