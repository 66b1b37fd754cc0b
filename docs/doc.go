// Package docs provides generated OpenAPI documentation.
//
// promptshelf API
//
//	@title			promptshelf API
//	@version		1.0
//	@description	Prompt block resolution and versioning: catalog defaults, overrides with history, and composition assembly.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/promptshelf
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/promptshelf/serve.go -o ./swagger --parseDependency --parseInternal
