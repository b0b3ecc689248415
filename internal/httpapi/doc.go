// Package httpapi exposes an editor session over HTTP. Handlers never touch
// the session directly: each one hands its work to the session's event loop
// and waits for it.
//
// Routes:
//
//	GET    /health
//	GET    /graph
//	POST   /pointer                 {"kind":"press","x":10,"y":20}
//	POST   /resize                  {"w":800,"h":600}
//	POST   /reset
//	POST   /nodes                   {"x":0.5,"y":0.5}
//	DELETE /nodes/:id?shift=&ctrl=
//	GET    /nodes/:id/panel
//	PUT    /nodes/:id/name          {"name":"..."}
//	PUT    /nodes/:id/plugin        {"plugin":"csvload"}
//	PUT    /nodes/:id/params/:key   {"value":"..."}
//	POST   /run
//	GET    /plugins
//	GET    /configs
//	POST   /configs/:name/save
//	POST   /configs/:name/load
//	GET    /export.dot
//
// Pointer kinds are press, motion, release and cancel. A parameter value
// given as a JSON string is parsed like form input; numbers, booleans and
// arrays are converted to the parameter's type, and null resets it.
package httpapi
