package igniter

import (
	"net/url"
	"sort"
	"strings"

	"github.com/igniter-hq/igniter-go/apperror"
)

// routeNode is one segment of the per-method trie (spec §4.4 "Data
// structure"). Static children are matched before the param child,
// which is matched before the wildcard child.
type routeNode struct {
	static      map[string]*routeNode
	param       *routeNode
	paramName   string
	wildcard    *routeNode
	wildcardName string
	leaves      map[string]*mountedAction // HTTP method -> action
}

func newRouteNode() *routeNode {
	return &routeNode{static: make(map[string]*routeNode), leaves: make(map[string]*mountedAction)}
}

type mountedAction struct {
	action         *Action
	controllerKey  string
	actionKey      string
	fullPath       string
	paramNames     []string
}

// Router mounts controllers, indexes their actions in a per-method
// trie, and dispatches matched requests to the action executor (spec
// §4.4).
type Router struct {
	app      *Application
	basePath string
	root     *routeNode
	byKey    map[string]*mountedAction // "controllerKey.actionKey" -> mounted
}

func newRouter(app *Application, basePath string) *Router {
	return &Router{
		app:      app,
		basePath: normalizeBasePath(basePath),
		root:     newRouteNode(),
		byKey:    make(map[string]*mountedAction),
	}
}

func normalizeBasePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(p, "/")
}

// Mount registers every action of controller under controllerKey,
// joining basePath + controller.Path + action.Path (spec §3 "Action"
// invariant: a fully-qualified route is unique within a router).
func (r *Router) Mount(controllerKey string, c *Controller) {
	for actionKey, action := range c.Actions {
		fullPath := joinPath(r.basePath, c.Path, action.Path)
		segments, paramNames := splitRouteSegments(fullPath)

		node := r.root
		for _, seg := range segments {
			node = node.child(seg)
		}

		mounted := &mountedAction{
			action:        action,
			controllerKey: controllerKey,
			actionKey:     actionKey,
			fullPath:      fullPath,
			paramNames:    paramNames,
		}
		node.leaves[action.Method] = mounted
		if action.Method == "GET" {
			node.leaves["HEAD"] = mounted
		}
		r.byKey[controllerKey+"."+actionKey] = mounted
	}
}

func (n *routeNode) child(seg string) *routeNode {
	switch {
	case strings.HasPrefix(seg, ":"):
		if n.param == nil {
			n.param = newRouteNode()
			n.paramName = strings.TrimPrefix(seg, ":")
		}
		return n.param
	case strings.HasPrefix(seg, "*"):
		if n.wildcard == nil {
			n.wildcard = newRouteNode()
			n.wildcardName = strings.TrimPrefix(seg, "*")
		}
		return n.wildcard
	default:
		if child, ok := n.static[seg]; ok {
			return child
		}
		child := newRouteNode()
		n.static[seg] = child
		return child
	}
}

// joinPath concatenates path segments, collapsing slashes.
func joinPath(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func splitRouteSegments(path string) (segments []string, paramNames []string) {
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
		if strings.HasPrefix(seg, ":") {
			paramNames = append(paramNames, strings.TrimPrefix(seg, ":"))
		} else if strings.HasPrefix(seg, "*") {
			paramNames = append(paramNames, strings.TrimPrefix(seg, "*"))
		}
	}
	return segments, paramNames
}

// normalizePath collapses adjacent slashes, strips a trailing slash
// (except at root), and URL-decodes segments (spec §4.4 "Matching
// rules").
func normalizePath(path string) (string, error) {
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return "", err
	}
	segments := strings.Split(decoded, "/")
	kept := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(kept, "/"), nil
}

// match resolves method+path to a mounted action, the parameter values
// captured along the way, and the set of methods registered at that
// path (for 405's Allow header and OPTIONS).
func (r *Router) match(method, path string) (*mountedAction, map[string]string, []string) {
	normalized, err := normalizePath(path)
	if err != nil {
		return nil, nil, nil
	}
	segments, _ := splitRouteSegments(normalized)

	params := make(map[string]string)
	node := r.root
	for _, seg := range segments {
		if child, ok := node.static[seg]; ok {
			node = child
			continue
		}
		if node.param != nil {
			params[node.paramName] = seg
			node = node.param
			continue
		}
		if node.wildcard != nil {
			params[node.wildcardName] = seg
			node = node.wildcard
			continue
		}
		return nil, nil, nil
	}

	if len(node.leaves) == 0 {
		return nil, nil, nil
	}
	mounted, ok := node.leaves[method]
	if !ok {
		return nil, params, allowedMethods(node)
	}
	return mounted, params, allowedMethods(node)
}

func allowedMethods(node *routeNode) []string {
	set := make(map[string]struct{}, len(node.leaves))
	for m := range node.leaves {
		set[m] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Dispatch matches and executes a query/mutation request (spec §4.4
// "Handler surface"). Stream actions are rejected here; the adapter
// routes them through MatchStream and Application.ExecuteStream.
func (r *Router) Dispatch(raw RawRequest) *Response {
	path := raw.Path
	method := strings.ToUpper(raw.Method)

	mounted, params, allow := r.match(method, path)
	if mounted == nil && len(allow) == 0 {
		return errorResponse(apperror.NotFound("no route matches " + path)).seal()
	}
	if mounted == nil {
		res := errorResponse(apperror.MethodNotAllowed(allow))
		res.SetHeader("Allow", strings.Join(allow, ", "))
		return res.seal()
	}
	if mounted.action.Kind == KindStream {
		return errorResponse(apperror.ConfigInvalid("stream actions must be dispatched through the realtime endpoint")).seal()
	}

	isHead := method == "HEAD"
	raw.Params = mergeParams(raw.Params, params)
	dispatchMethod := raw.Method
	if isHead {
		raw.Method = "GET"
	}

	res := r.app.executeAction(mounted.action, raw)
	if isHead {
		res.body = nil
	}
	raw.Method = dispatchMethod
	return res
}

func mergeParams(explicit, matched map[string]string) map[string]string {
	out := make(map[string]string, len(explicit)+len(matched))
	for k, v := range explicit {
		out[k] = v
	}
	for k, v := range matched {
		out[k] = v
	}
	return out
}

// MatchStream resolves a GET path to a stream action for the realtime
// adapter (spec §6.3).
func (r *Router) MatchStream(path string) (*Action, map[string]string, bool) {
	mounted, params, _ := r.match("GET", path)
	if mounted == nil || mounted.action.Kind != KindStream {
		return nil, nil, false
	}
	return mounted.action, params, true
}

// BuildURL renders the canonical URL for controllerKey.actionKey,
// substituting params and serializing query as repeated keys for array
// values (spec §4.4 "URL build").
func (r *Router) BuildURL(controllerKey, actionKey string, params map[string]string, query map[string][]string) (string, error) {
	mounted, ok := r.byKey[controllerKey+"."+actionKey]
	if !ok {
		return "", apperror.NotFound("no such controller/action: " + controllerKey + "." + actionKey)
	}

	segments, _ := splitRouteSegments(mounted.fullPath)
	built := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch {
		case strings.HasPrefix(seg, ":"):
			name := strings.TrimPrefix(seg, ":")
			value, ok := params[name]
			if !ok {
				return "", apperror.ConfigInvalid("missing URL parameter: " + name)
			}
			built = append(built, url.PathEscape(value))
		case strings.HasPrefix(seg, "*"):
			name := strings.TrimPrefix(seg, "*")
			value, ok := params[name]
			if !ok {
				return "", apperror.ConfigInvalid("missing URL parameter: " + name)
			}
			built = append(built, value)
		default:
			built = append(built, seg)
		}
	}

	path := "/" + strings.Join(built, "/")
	if len(query) == 0 {
		return path, nil
	}

	values := url.Values{}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range query[k] {
			values.Add(k, v)
		}
	}
	return path + "?" + values.Encode(), nil
}
