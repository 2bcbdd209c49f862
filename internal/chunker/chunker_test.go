package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequarry/codequarry/pkg/types"
)

func TestNew(t *testing.T) {
	c := New()
	assert.NotNil(t, c)
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name string
		path string
		want ContentCategory
	}{
		{"markdown", "docs/README.md", CategoryMarkup},
		{"nest controller", "src/users/users.controller.ts", CategoryController},
		{"java controller", "src/OrdersController.java", CategoryController},
		{"ruby controller", "app/payments_controller.rb", CategoryController},
		{"plain source", "src/users/users.service.ts", CategorySource},
		{"go source", "internal/server/server.go", CategorySource},
		{"binary-ish", "assets/logo.png", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCategory(tt.path, ""))
		})
	}
}

func TestChunk_SourceDeclarations(t *testing.T) {
	content := `import { thing } from "./thing";

export const DEFAULT_LIMIT = 20;

export function parseQuery(raw: string): Query {
  return { raw };
}

export class QueryPlanner {
  plan(q: Query) {
    return [q];
  }
}
`
	c := New()
	chunks, err := c.Chunk([]byte(content), "src/query.ts", "")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	names := make(map[string]types.Chunk)
	for _, ch := range chunks {
		names[ch.Symbol] = ch
	}

	require.Contains(t, names, "DEFAULT_LIMIT")
	require.Contains(t, names, "parseQuery")
	require.Contains(t, names, "QueryPlanner")
	require.Contains(t, names, "QueryPlanner.plan")

	fn := names["parseQuery"]
	assert.Equal(t, types.ChunkDeclaration, fn.Kind)
	assert.Equal(t, 5, fn.StartLine)
	assert.Equal(t, 7, fn.EndLine)
	assert.Contains(t, fn.Text, "return { raw }")
}

func TestChunk_Controller(t *testing.T) {
	content := `import { Controller, Get, Post } from "@nestjs/common";

@Controller('users')
export class UsersController {
  @Get(':id')
  findOne(@Param('id') id: string): Promise<UserDto> {
    return this.users.findOne(id);
  }

  @Post()
  create(@Body() dto: CreateUserDto): Promise<UserDto> {
    return this.users.create(dto);
  }
}
`
	c := New()
	chunks, err := c.Chunk([]byte(content), "src/users/users.controller.ts", "")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, types.ChunkRoute, chunks[0].Kind)
	assert.Equal(t, "GET /users/:id", chunks[0].Title)
	assert.Equal(t, "UsersController.findOne", chunks[0].Symbol)

	assert.Equal(t, "POST /users", chunks[1].Title)
	assert.Equal(t, "UsersController.create", chunks[1].Symbol)
	assert.Contains(t, chunks[1].Text, "this.users.create")
}

func TestChunk_Markup(t *testing.T) {
	content := `Intro paragraph before any heading.

# Getting Started

Install the tool and run it.

## Configuration

Set the options:

- one
- two

#### Deep heading stays in section

More configuration notes.

# Reference

Final section.
`
	c := New()
	chunks, err := c.Chunk([]byte(content), "README.md", "")
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	assert.Equal(t, "", chunks[0].Title) // preamble
	assert.Equal(t, "Getting Started", chunks[1].Title)
	assert.Equal(t, "Configuration", chunks[2].Title)
	assert.Contains(t, chunks[2].Text, "Deep heading stays in section")
	assert.Equal(t, "Reference", chunks[3].Title)

	for _, ch := range chunks {
		assert.Equal(t, types.ChunkSection, ch.Kind)
		assert.Positive(t, ch.StartLine)
		assert.GreaterOrEqual(t, ch.EndLine, ch.StartLine)
	}
}

func TestChunk_FallbackSingleWholeFile(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"unknown extension", "data/notes.txt", "free-form text\nwith lines\n"},
		{"no declarations", "src/empty.ts", "// nothing but comments\n// here\n"},
		{"config file", "conf/settings.ini", "[main]\nkey=value\n"},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := c.Chunk([]byte(tt.body), tt.path, "")
			require.NoError(t, err)
			require.Len(t, chunks, 1)
			assert.Equal(t, types.ChunkFile, chunks[0].Kind)
			assert.Equal(t, 1, chunks[0].StartLine)
			assert.Equal(t, tt.body, chunks[0].Text)
		})
	}
}

func TestChunk_OrdinalsStableAndContiguous(t *testing.T) {
	content := `export function a() {
  return 1;
}

export function b() {
  return 2;
}

export const c = 3;
`
	c := New()

	first, err := c.Chunk([]byte(content), "src/lib.ts", "")
	require.NoError(t, err)
	second, err := c.Chunk([]byte(content), "src/lib.ts", "")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, i, first[i].Ordinal)
		assert.Equal(t, first[i].Ordinal, second[i].Ordinal)
		assert.Equal(t, first[i].ContentHash, second[i].ContentHash)
		assert.Equal(t, first[i].Symbol, second[i].Symbol)
	}
}

func TestChunk_EmptyContent(t *testing.T) {
	c := New()
	chunks, err := c.Chunk(nil, "src/empty.ts", "")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestJoinRoute(t *testing.T) {
	tests := []struct {
		base, sub, want string
	}{
		{"users", ":id", "/users/:id"},
		{"users", "", "/users"},
		{"", "health", "/health"},
		{"", "", "/"},
		{"/api/v1/", "/users/", "/api/v1/users"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinRoute(tt.base, tt.sub))
	}
}
