// Package restdoc resolves the documentation metadata of REST service methods
// declared with //rest: directives.
//
// A Resource is a named type carrying a root path. Each of its methods is
// resolved into an Endpoint: verbs, path, media types and parameter bindings.
// Every lookup checks the method's own declaration first and falls back to the
// interface method it implements, so directives written once on an interface
// apply to all implementations:
//
//	//rest:path /items
//	//rest:produces application/json
//	type ItemsAPI interface {
//		//rest:GET
//		//rest:path {id}
//		//rest:pathparam id
//		//rest:queryparam sort
//		Get(id, sort string) (*Item, error)
//	}
//
// Parameter directives are matched by position, not by name, when the
// implementation is compared with its interface.
package restdoc
