package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/terrainview/internal/engine/shading"
)

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionShadingGradient
	ActionShadingSource
	ActionShadingNormals
	ActionShadingLighting
	ActionReload
	ActionPanWest
	ActionPanEast
	ActionPanNorth
	ActionPanSouth
	ActionZoomIn
	ActionZoomOut
	ActionScreenshot
)

var keyBindings = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE:   ActionQuit,
	sdl.SCANCODE_1:        ActionShadingGradient,
	sdl.SCANCODE_2:        ActionShadingSource,
	sdl.SCANCODE_3:        ActionShadingNormals,
	sdl.SCANCODE_4:        ActionShadingLighting,
	sdl.SCANCODE_KP_1:     ActionShadingGradient,
	sdl.SCANCODE_KP_2:     ActionShadingSource,
	sdl.SCANCODE_KP_3:     ActionShadingNormals,
	sdl.SCANCODE_KP_4:     ActionShadingLighting,
	sdl.SCANCODE_R:        ActionReload,
	sdl.SCANCODE_LEFT:     ActionPanWest,
	sdl.SCANCODE_RIGHT:    ActionPanEast,
	sdl.SCANCODE_UP:       ActionPanNorth,
	sdl.SCANCODE_DOWN:     ActionPanSouth,
	sdl.SCANCODE_EQUALS:   ActionZoomIn,
	sdl.SCANCODE_KP_PLUS:  ActionZoomIn,
	sdl.SCANCODE_MINUS:    ActionZoomOut,
	sdl.SCANCODE_KP_MINUS: ActionZoomOut,
	sdl.SCANCODE_F12:      ActionScreenshot,
}

// ActionForKey returns the action bound to a scancode, or ActionNone.
func ActionForKey(key sdl.Scancode) Action {
	return keyBindings[key]
}

// ShadingMode returns the mode selected by a shading action.
func (a Action) ShadingMode() (shading.Mode, bool) {
	switch a {
	case ActionShadingGradient:
		return shading.Gradient, true
	case ActionShadingSource:
		return shading.SourceTexture, true
	case ActionShadingNormals:
		return shading.Normals, true
	case ActionShadingLighting:
		return shading.Lighting, true
	}
	return 0, false
}

// Pan returns the tile offset for a pan action. North is -y in tile space.
func (a Action) Pan() (dx, dy int, ok bool) {
	switch a {
	case ActionPanWest:
		return -1, 0, true
	case ActionPanEast:
		return 1, 0, true
	case ActionPanNorth:
		return 0, -1, true
	case ActionPanSouth:
		return 0, 1, true
	}
	return 0, 0, false
}

// Actions returns the bound actions for every key pressed during the last Update.
func (i *Input) Actions() []Action {
	var actions []Action
	for _, e := range i.events {
		if e.Type != EventKeyDown {
			continue
		}
		if a := ActionForKey(e.Key); a != ActionNone {
			actions = append(actions, a)
		}
	}
	return actions
}
