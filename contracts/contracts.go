// Package contracts embeds the per-domain OpenAPI documents. The API server
// validates inbound requests against them and serves them as docs.
package contracts

import _ "embed"

//go:embed lessons.yaml
var LessonsYAML []byte

//go:embed students.yaml
var StudentsYAML []byte

//go:embed generation.yaml
var GenerationYAML []byte

//go:embed questions.yaml
var QuestionsYAML []byte

//go:embed uploads.yaml
var UploadsYAML []byte
