package emit

import (
	"strings"
	"text/template"
)

var templateFuncs = template.FuncMap{
	"export": exportName,
}

// exportName turns a tool identifier into a camel-cased suffix for its
// handler function, e.g. get_forecast -> GetForecast.
func exportName(name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' }) {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

var serverTemplate = template.Must(template.New("server.js").Funcs(templateFuncs).Parse(`#!/usr/bin/env node
import { Server } from '@modelcontextprotocol/sdk/server/index.js';
import { StdioServerTransport } from '@modelcontextprotocol/sdk/server/stdio.js';
import { ListToolsRequestSchema, CallToolRequestSchema } from '@modelcontextprotocol/sdk/types.js';

const server = new Server(
  { name: '{{ .Name }}', version: '{{ .Version }}' },
  { capabilities: { tools: {} } }
);

server.setRequestHandler(ListToolsRequestSchema, async () => ({
  tools: [
{{- range .Tools }}
    {
      name: '{{ .Name }}',
      description: '{{ .Description }}',
      inputSchema: {
        type: 'object',
        properties: {
{{- range .Properties }}
          {{ .Name }}: { type: '{{ .Type }}', description: '{{ .Description }}' },
{{- end }}
        },
      },
    },
{{- end }}
  ],
}));

server.setRequestHandler(CallToolRequestSchema, async (request) => {
  const { name } = request.params;
  switch (name) {
{{- range .Tools }}
    case '{{ .Name }}':
      return handle{{ export .Name }}(request.params.arguments ?? {});
{{- end }}
    default:
      throw new Error('Unknown tool: ' + name);
  }
});
{{ range .Tools }}
async function handle{{ export .Name }}(args) {
  return { content: [{ type: 'text', text: '{{ .Name }} is not implemented yet' }] };
}
{{ end }}
const transport = new StdioServerTransport();
await server.connect(transport);
`))

var packageTemplate = template.Must(template.New("package.json").Parse(`{
  "name": "{{ .Name }}",
  "version": "{{ .Version }}",
  "description": "{{ .Description }}",
  "type": "module",
  "main": "server.js",
  "bin": { "{{ .Name }}": "server.js" },
  "dependencies": {
    "@modelcontextprotocol/sdk": "^1.0.0"
  }
}
`))

var readmeTemplate = template.Must(template.New("README.md").Parse(`# {{ .Name }}

{{ .Description }}

## Tools
{{ range .Tools }}
- ` + "`{{ .Name }}`" + `: {{ .Description }}
{{- end }}

## Run

    npm install
    node server.js
`))

var dockerfileTemplate = template.Must(template.New("Dockerfile").Parse(`FROM node:20-alpine
WORKDIR /app
COPY package.json ./
RUN npm install --omit=dev
COPY . .
CMD ["node", "server.js"]
`))
