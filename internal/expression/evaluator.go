package expression

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"task-petri-flow/internal/models"

	lua "github.com/yuin/gopher-lua"
)

// EvaluationContext holds the variables visible to an expression
type EvaluationContext struct {
	Variables map[string]interface{}
}

// NewEvaluationContext creates a new evaluation context
func NewEvaluationContext() *EvaluationContext {
	return &EvaluationContext{
		Variables: make(map[string]interface{}),
	}
}

// SetValue sets or overrides a variable
func (ctx *EvaluationContext) SetValue(name string, value interface{}) {
	ctx.Variables[name] = value
}

// BindTask exposes the task fields as id, name, status and created_at (unix seconds)
func (ctx *EvaluationContext) BindTask(task *models.Task) {
	ctx.SetValue("id", task.ID)
	ctx.SetValue("name", task.Name)
	ctx.SetValue("status", task.Status)
	ctx.SetValue("created_at", task.CreatedAt.Unix())
}

// Evaluator handles expression evaluation using gopher-lua.
// Only the base, table, string and math libraries are loaded; file and OS
// access are not available to expressions.
type Evaluator struct {
	luaState *lua.LState
	mu       sync.Mutex
}

// NewEvaluator creates a new expression evaluator
func NewEvaluator() *Evaluator {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, unsafe := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(unsafe, lua.LNil)
	}

	evaluator := &Evaluator{
		luaState: L,
	}

	evaluator.registerTaskFunctions()

	return evaluator
}

// Close closes the Lua state
func (e *Evaluator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.luaState != nil {
		e.luaState.Close()
		e.luaState = nil
	}
}

// EvaluatePredicate evaluates a boolean expression. An empty expression is true.
func (e *Evaluator) EvaluatePredicate(ctx context.Context, expression string, evalCtx *EvaluationContext) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return true, nil
	}

	result, err := e.Evaluate(ctx, expression, evalCtx)
	if err != nil {
		return false, err
	}

	boolResult, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression '%s' did not return a boolean value, got %T", expression, result)
	}
	return boolResult, nil
}

// Evaluate evaluates an expression and returns its Go value. Evaluation stops
// with an error when ctx is done.
func (e *Evaluator) Evaluate(ctx context.Context, expression string, evalCtx *EvaluationContext) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.luaState == nil {
		return nil, fmt.Errorf("evaluator is closed")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	e.luaState.SetContext(ctx)
	defer e.luaState.RemoveContext()

	if err := e.setupLuaContext(evalCtx); err != nil {
		return nil, fmt.Errorf("failed to setup Lua context: %w", err)
	}

	result, err := e.evaluateLuaExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression '%s': %w", expression, err)
	}
	return result, nil
}

// setupLuaContext sets up the Lua environment with the evaluation context
func (e *Evaluator) setupLuaContext(evalCtx *EvaluationContext) error {
	if evalCtx == nil {
		return nil
	}
	for name, value := range evalCtx.Variables {
		luaValue, err := e.goValueToLua(value)
		if err != nil {
			return fmt.Errorf("failed to convert variable %s: %w", name, err)
		}
		e.luaState.SetGlobal(name, luaValue)
	}
	return nil
}

// evaluateLuaExpression evaluates a Lua expression and returns the result
func (e *Evaluator) evaluateLuaExpression(expression string) (interface{}, error) {
	L := e.luaState

	// Wrap the expression in a return statement if it doesn't already have one
	luaCode := expression
	if !strings.HasPrefix(strings.TrimSpace(expression), "return") {
		luaCode = "return " + expression
	}

	top := L.GetTop()
	if err := L.DoString(luaCode); err != nil {
		return nil, fmt.Errorf("Lua execution error: %w", err)
	}
	if L.GetTop() == top {
		return nil, nil
	}

	result := L.Get(-1)
	L.SetTop(top)

	return e.luaValueToGo(result), nil
}

// goValueToLua converts a Go value to a Lua value
func (e *Evaluator) goValueToLua(value interface{}) (lua.LValue, error) {
	switch v := value.(type) {
	case nil:
		return lua.LNil, nil
	case bool:
		return lua.LBool(v), nil
	case int:
		return lua.LNumber(v), nil
	case int32:
		return lua.LNumber(v), nil
	case int64:
		return lua.LNumber(v), nil
	case float32:
		return lua.LNumber(v), nil
	case float64:
		return lua.LNumber(v), nil
	case string:
		return lua.LString(v), nil
	case []string:
		table := e.luaState.NewTable()
		for i, item := range v {
			table.RawSetInt(i+1, lua.LString(item))
		}
		return table, nil
	case map[string]interface{}:
		table := e.luaState.NewTable()
		for key, val := range v {
			luaVal, err := e.goValueToLua(val)
			if err != nil {
				return nil, fmt.Errorf("failed to convert map value for key %s: %w", key, err)
			}
			table.RawSetString(key, luaVal)
		}
		return table, nil
	default:
		return lua.LString(fmt.Sprintf("%v", v)), nil
	}
}

// luaValueToGo converts a Lua value to a Go value
func (e *Evaluator) luaValueToGo(value lua.LValue) interface{} {
	switch v := value.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		num := float64(v)
		if num == float64(int64(num)) {
			return int(num)
		}
		return num
	case lua.LString:
		return string(v)
	case *lua.LTable:
		result := make(map[string]interface{})
		v.ForEach(func(key, val lua.LValue) {
			result[key.String()] = e.luaValueToGo(val)
		})
		return result
	default:
		return v.String()
	}
}

// registerTaskFunctions registers helpers for task filters
func (e *Evaluator) registerTaskFunctions() {
	L := e.luaState

	L.SetGlobal("contains", L.NewFunction(luaContains))
	L.SetGlobal("starts_with", L.NewFunction(luaStartsWith))
	L.SetGlobal("lower", L.NewFunction(luaLower))
}

func luaContains(L *lua.LState) int {
	s := L.CheckString(1)
	sub := L.CheckString(2)
	L.Push(lua.LBool(strings.Contains(s, sub)))
	return 1
}

func luaStartsWith(L *lua.LState) int {
	s := L.CheckString(1)
	prefix := L.CheckString(2)
	L.Push(lua.LBool(strings.HasPrefix(s, prefix)))
	return 1
}

func luaLower(L *lua.LState) int {
	L.Push(lua.LString(strings.ToLower(L.CheckString(1))))
	return 1
}
