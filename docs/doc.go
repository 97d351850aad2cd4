// Package docs provides generated OpenAPI documentation.
//
// Shiftparse API
//
//	@title			Shiftparse API
//	@version		1.0
//	@description	Extracts shift schedules from PDF rosters through a remote language-model service.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/shiftparse
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http
package docs

//go:generate swag init -g ../cmd/shiftparse/serve.go -o . --parseDependency --parseInternal --outputTypes go
