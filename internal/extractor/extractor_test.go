package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequarry/codequarry/pkg/types"
)

const controllerFixture = `import { Controller } from '@nestjs/common';

@Controller('users')
export class UsersController {
  constructor(private readonly users: UsersService) {}

  @Get(':id')
  findOne(@Param('id') id: string): Promise<User> {
    return this.users.findOne(id);
  }

  @Post()
  async create(@Body() body: CreateUserDto): Promise<User> {
    return this.users.create(body);
  }
}
`

func TestExtract_ControllerEndpoints(t *testing.T) {
	e := New()
	facts, err := e.Extract([]byte(controllerFixture), "src/users/users.controller.ts", "")
	require.NoError(t, err)
	require.Len(t, facts.Endpoints, 2)

	get := facts.Endpoints[0]
	assert.Equal(t, "http", get.Protocol)
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, "/users/:id", get.Path)
	assert.Equal(t, "UsersController.findOne", get.Handler)
	assert.Equal(t, "User", get.Response)
	assert.Empty(t, get.Request)
	assert.Equal(t, 7, get.StartLine)
	assert.Equal(t, 10, get.EndLine)

	post := facts.Endpoints[1]
	assert.Equal(t, "POST", post.Method)
	assert.Equal(t, "/users", post.Path)
	assert.Equal(t, "UsersController.create", post.Handler)
	assert.Equal(t, "CreateUserDto", post.Request)
	assert.Equal(t, "User", post.Response)
}

func TestExtract_NoEndpointsOutsideControllers(t *testing.T) {
	e := New()
	facts, err := e.Extract([]byte(controllerFixture), "src/users/users.service.ts", "")
	require.NoError(t, err)
	assert.Empty(t, facts.Endpoints)
	assert.NotEmpty(t, facts.Symbols)
}

func TestExtract_SymbolsTypeScript(t *testing.T) {
	src := `export interface Repo {
  find(id: string): Promise<Repo>;
}

export enum Status {
  Open,
  Closed,
}

export type RepoID = string;

export async function loadRepo(id: RepoID): Promise<Repo> {
  return lookup(id);
}

const toKey = (id: RepoID): string => id.trim();
`
	facts, err := New().Extract([]byte(src), "src/repo.ts", "")
	require.NoError(t, err)

	byName := map[string]types.Symbol{}
	for _, s := range facts.Symbols {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "Repo")
	assert.Equal(t, types.KindInterface, byName["Repo"].Kind)
	assert.True(t, byName["Repo"].Exported)

	require.Contains(t, byName, "Status")
	assert.Equal(t, types.KindEnum, byName["Status"].Kind)

	require.Contains(t, byName, "RepoID")
	assert.Equal(t, types.KindType, byName["RepoID"].Kind)

	require.Contains(t, byName, "loadRepo")
	assert.Equal(t, types.KindFunction, byName["loadRepo"].Kind)
	assert.True(t, byName["loadRepo"].Async)
	assert.True(t, byName["loadRepo"].Exported)

	require.Contains(t, byName, "toKey")
	assert.Equal(t, types.KindFunction, byName["toKey"].Kind)
	assert.False(t, byName["toKey"].Exported)
}

func TestExtract_SymbolsClassMethods(t *testing.T) {
	facts, err := New().Extract([]byte(controllerFixture), "src/users/users.controller.ts", "")
	require.NoError(t, err)

	byName := map[string]types.Symbol{}
	for _, s := range facts.Symbols {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "UsersController")
	assert.Equal(t, types.KindClass, byName["UsersController"].Kind)
	assert.True(t, byName["UsersController"].Exported)

	require.Contains(t, byName, "UsersController.findOne")
	assert.Equal(t, types.KindMethod, byName["UsersController.findOne"].Kind)

	require.Contains(t, byName, "UsersController.create")
	assert.True(t, byName["UsersController.create"].Async)
}

func TestExtract_SymbolsGo(t *testing.T) {
	src := `package store

type Store interface {
	Get(id string) (string, error)
}

type memStore struct {
	mu sync.Mutex
}

func NewStore() *memStore {
	return &memStore{}
}

func (s *memStore) Get(id string) (string, error) {
	return "", nil
}
`
	facts, err := New().Extract([]byte(src), "internal/store/store.go", "")
	require.NoError(t, err)
	require.Len(t, facts.Symbols, 4)

	assert.Equal(t, types.KindInterface, facts.Symbols[0].Kind)
	assert.Equal(t, "Store", facts.Symbols[0].Name)
	assert.True(t, facts.Symbols[0].Exported)

	assert.Equal(t, types.KindType, facts.Symbols[1].Kind)
	assert.False(t, facts.Symbols[1].Exported)

	assert.Equal(t, types.KindFunction, facts.Symbols[2].Kind)
	assert.Equal(t, "NewStore", facts.Symbols[2].Name)

	assert.Equal(t, types.KindMethod, facts.Symbols[3].Kind)
	assert.Equal(t, "memStore.Get", facts.Symbols[3].Name)
	assert.Equal(t, 15, facts.Symbols[3].StartLine)
	assert.Equal(t, 17, facts.Symbols[3].EndLine)
}

func TestExtract_SymbolsPython(t *testing.T) {
	src := `import json

class Cache:
    def __init__(self):
        self._data = {}

    async def fetch(self, key):
        return self._data[key]

def save(path):
    return path

def _hidden():
    pass
`
	facts, err := New().Extract([]byte(src), "cache.py", "")
	require.NoError(t, err)

	byName := map[string]types.Symbol{}
	for _, s := range facts.Symbols {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "Cache")
	assert.Equal(t, types.KindClass, byName["Cache"].Kind)

	require.Contains(t, byName, "Cache.__init__")
	assert.False(t, byName["Cache.__init__"].Exported)

	require.Contains(t, byName, "Cache.fetch")
	assert.Equal(t, types.KindMethod, byName["Cache.fetch"].Kind)
	assert.True(t, byName["Cache.fetch"].Async)

	require.Contains(t, byName, "save")
	assert.Equal(t, types.KindFunction, byName["save"].Kind)
	assert.True(t, byName["save"].Exported)

	require.Contains(t, byName, "_hidden")
	assert.False(t, byName["_hidden"].Exported)
}

func TestExtract_Edges(t *testing.T) {
	src := `const res = await fetch('https://api.example.com/v1/users');
await this.kafka.emit('user.created', payload);
channel.sendToQueue('jobs', data);
bus.subscribe('user.deleted', handler);
@EventPattern('order.placed')
const r = await axios.post('https://billing.internal/charge', body);
`
	facts, err := New().Extract([]byte(src), "src/events.ts", "")
	require.NoError(t, err)
	require.Len(t, facts.Edges, 6)

	want := []struct {
		typ   types.EdgeType
		kind  string
		value string
		line  int
	}{
		{types.EdgeCall, "url", "https://api.example.com/v1/users", 1},
		{types.EdgePublish, "topic", "user.created", 2},
		{types.EdgePublish, "queue", "jobs", 3},
		{types.EdgeConsume, "topic", "user.deleted", 4},
		{types.EdgeConsume, "topic", "order.placed", 5},
		{types.EdgeCall, "url", "POST https://billing.internal/charge", 6},
	}
	for i, w := range want {
		edge := facts.Edges[i]
		assert.Equal(t, w.typ, edge.Type, "edge %d type", i)
		assert.Equal(t, w.kind, edge.TargetKind, "edge %d kind", i)
		assert.Equal(t, w.value, edge.TargetValue, "edge %d value", i)
		assert.Equal(t, w.line, edge.Line, "edge %d line", i)
		assert.Equal(t, types.ExtractionHeuristic, edge.Method)
		assert.Greater(t, edge.Confidence, 0.0)
		assert.LessOrEqual(t, edge.Confidence, 1.0)
		require.NoError(t, edge.Validate())
	}
}

func TestExtract_EmptyContent(t *testing.T) {
	facts, err := New().Extract(nil, "empty.ts", "")
	require.NoError(t, err)
	assert.True(t, facts.Empty())
}

func TestExtract_Deterministic(t *testing.T) {
	e := New()
	first, err := e.Extract([]byte(controllerFixture), "src/users/users.controller.ts", "")
	require.NoError(t, err)
	second, err := e.Extract([]byte(controllerFixture), "src/users/users.controller.ts", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
