package clientdist

import _ "embed"

// ClientJS is the browser client for the tooltip bridge.
//
// It is served by the bridge at "/client.js".
//
//go:embed tooltip-client.js
var ClientJS []byte
