package weave

import (
	"fmt"
	"sort"
	"strings"
)

// Query modifiers are appended to a path after a question mark. An exact
// key lookup carries none.
const (
	KeyQueryMod    = ""
	PrefixQueryMod = "prefix"
)

// Model is one key and value pair returned by a query.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair returns the model of key and value.
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler answers read only requests against the committed state.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister installs the query paths of one module.
type QueryRegister func(QueryRouter)

// QueryRouter maps query paths, such as "/pools" or "/pools/sender", to
// their handlers. The zero value is not usable, use NewQueryRouter.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

// RegisterAll calls every register function with this router.
func (r QueryRouter) RegisterAll(qr ...QueryRegister) {
	for _, register := range qr {
		register(r)
	}
}

// Register binds h to path. Binding a path twice is a programming error
// and panics.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, taken := r.routes[path]; taken {
		panic(fmt.Sprintf("query path %q registered twice", path))
	}
	r.routes[path] = h
}

// Handler returns the handler bound to path or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}

// Route splits a full query path, "/pools?prefix" for example, into its
// handler and modifier. The handler is nil if the path is not bound.
func (r QueryRouter) Route(full string) (QueryHandler, string) {
	path, mod := full, KeyQueryMod
	if i := strings.IndexByte(full, '?'); i >= 0 {
		path, mod = full[:i], full[i+1:]
	}
	return r.routes[path], mod
}

// Paths returns all bound paths in lexical order.
func (r QueryRouter) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for p := range r.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
