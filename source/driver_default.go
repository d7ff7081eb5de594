// Package source registers the optional input drivers. Import it for its
// side effect:
//
//	import _ "github.com/reoring/cifdict/source"
package source

import (
	cifdict "github.com/reoring/cifdict"
	"github.com/reoring/cifdict/source/mmjson"
)

// init in a separate package to avoid import cycle in root. This registers
// the go-json backed mmJSON driver.
func init() { cifdict.RegisterDriver("mmjson", mmjson.Driver()) }
