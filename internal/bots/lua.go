package bots

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
)

// ScriptPrefix is prepended to the file name of every registered script.
const ScriptPrefix = "lua:"

// scriptTimeout bounds a single choose() call.
const scriptTimeout = 2 * time.Second

//go:embed scripts/*.lua
var builtinScripts embed.FS

func init() {
	if _, err := registerScripts(builtinScripts, "scripts"); err != nil {
		panic(err)
	}
}

// LoadScripts registers every .lua file in dir as a strategy named
// "lua:<file name without extension>" and returns the new names.
//
// A script must define choose(view). view holds player, players, turn,
// turn_limit, special_points, board (rows as in Board.String), hand (list
// of {number, name, size, special_cost}) and options (list of {card, x, y,
// rotation, special, gain}). choose returns a 1-based index into options,
// or 0 to pass.
func LoadScripts(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("bots: cannot open %s: %w", dir, err)
	}
	return registerScripts(os.DirFS(dir), ".")
}

func registerScripts(fsys fs.FS, root string) ([]string, error) {
	var names []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".lua" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		source := string(data)
		// Compile once up front so broken scripts fail at load time.
		probe, err := newLuaBot("", source)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		probe.close()

		name := ScriptPrefix + strings.TrimSuffix(path.Base(p), ".lua")
		if registry.Exists(name) {
			return fmt.Errorf("%s: strategy %q already registered", p, name)
		}
		registry.Register(name, "scripted: "+p, func(int64) registry.Strategy {
			bot, err := newLuaBot(name, source)
			if err != nil {
				return passer{}
			}
			return bot
		})
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bots: loading scripts: %w", err)
	}
	return names, nil
}

type luaBot struct {
	mu   sync.Mutex
	name string
	L    *lua.LState
}

func newLuaBot(name, source string) (*luaBot, error) {
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
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, err
		}
	}
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, err
	}
	if L.GetGlobal("choose").Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script does not define choose(view)")
	}
	return &luaBot{name: name, L: L}, nil
}

func (b *luaBot) close() {
	b.L.Close()
}

func (b *luaBot) Name() string { return b.name }

// Choose calls the script. Any script error or out-of-range answer passes.
func (b *luaBot) Choose(v match.View) match.Submission {
	opts := Options(v)
	pass := match.Pass(cheapestDiscard(v.Hand))

	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	b.L.SetContext(ctx)
	defer b.L.RemoveContext()

	err := b.L.CallByParam(lua.P{Fn: b.L.GetGlobal("choose"), NRet: 1, Protect: true}, b.viewTable(v, opts))
	if err != nil {
		return pass
	}
	ret := b.L.Get(-1)
	b.L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return pass
	}
	i := int(n)
	if i < 1 || i > len(opts) {
		return pass
	}
	return opts[i-1].Submission()
}

func (b *luaBot) viewTable(v match.View, opts []Option) *lua.LTable {
	L := b.L
	t := L.NewTable()
	t.RawSetString("player", lua.LNumber(v.Player))
	t.RawSetString("players", lua.LNumber(v.Players))
	t.RawSetString("turn", lua.LNumber(v.Turn))
	t.RawSetString("turn_limit", lua.LNumber(v.TurnLimit))
	t.RawSetString("special_points", lua.LNumber(v.SpecialPoints))

	board := L.NewTable()
	for _, row := range strings.Split(v.Board.String(), "\n") {
		board.Append(lua.LString(row))
	}
	t.RawSetString("board", board)

	hand := L.NewTable()
	for _, c := range v.Hand {
		ct := L.NewTable()
		ct.RawSetString("number", lua.LNumber(c.Number))
		ct.RawSetString("name", lua.LString(c.Name))
		ct.RawSetString("size", lua.LNumber(c.Size()))
		ct.RawSetString("special_cost", lua.LNumber(c.SpecialCost))
		hand.Append(ct)
	}
	t.RawSetString("hand", hand)

	options := L.NewTable()
	for _, o := range opts {
		ot := L.NewTable()
		ot.RawSetString("card", lua.LNumber(o.Card.Number))
		ot.RawSetString("x", lua.LNumber(o.Pos.X))
		ot.RawSetString("y", lua.LNumber(o.Pos.Y))
		ot.RawSetString("rotation", lua.LNumber(o.Pos.Rotation))
		ot.RawSetString("special", lua.LBool(o.Special))
		ot.RawSetString("gain", lua.LNumber(o.Gain))
		options.Append(ot)
	}
	t.RawSetString("options", options)
	return t
}
