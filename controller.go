package igniter

// Controller groups related Actions under a shared base path and
// procedure chain (spec §4.4 "Controllers"). Its procedures run after
// application-level middleware and before each action's own procedures
// (spec §4.2 step 1: global, then controller, then action).
type Controller struct {
	Name       string
	Path       string
	Procedures []Procedure
	Actions    map[string]*Action
}

// NewController constructs a Controller mounted at path, running
// procedures before every one of its actions (spec §4.4).
func NewController(name, path string, procedures ...Procedure) *Controller {
	return &Controller{
		Name:       name,
		Path:       path,
		Procedures: procedures,
		Actions:    make(map[string]*Action),
	}
}

// Query registers a query (read, side-effect-free) action under name
// (spec §4.2 "Action kinds").
func (c *Controller) Query(name string, action *Action) *Controller {
	action.Kind = KindQuery
	c.register(name, action)
	return c
}

// Mutation registers a mutation (write) action under name.
func (c *Controller) Mutation(name string, action *Action) *Controller {
	action.Kind = KindMutation
	c.register(name, action)
	return c
}

// Stream registers a stream (SSE) action under name.
func (c *Controller) Stream(name string, action *Action) *Controller {
	action.Kind = KindStream
	c.register(name, action)
	return c
}

// register prepends the controller's own procedures to the action's, so
// the effective chain is global ∪ controller ∪ action in stable order
// (spec §4.2 step 1).
func (c *Controller) register(name string, action *Action) {
	if len(c.Procedures) > 0 {
		action.Procedures = append(append([]Procedure{}, c.Procedures...), action.Procedures...)
	}
	c.Actions[name] = action
}
