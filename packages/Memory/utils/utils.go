package utils

// Slots holds virtual-table indices for the interfaces the tool calls or
// intercepts.
type Slots struct {
	// IBaseClientDLL
	GetAllClasses    int
	HudProcessInput  int
	HudUpdate        int
	ActivateMouse    int
	FrameStageNotify int

	// IClientMode
	OverrideView int
	CreateMove   int

	// IVEngineClient
	GetLocalPlayer  int
	GetViewAngles   int
	SetViewAngles   int
	IsInGame        int
	GetBSPTreeQuery int

	// IClientEntityList
	GetClientEntity           int
	GetClientEntityFromHandle int
	GetHighestEntityIndex     int

	// IClientNetworkable, reached at Networkable from the entity base.
	GetClientClass int
	IsDormant      int

	// IClientRenderable / IClientUnknown
	GetClientUnknown int
	GetBaseEntity    int

	// IVModelRender
	ForcedMaterialOverride int
	DrawModelExecute       int

	// ISpatialQuery
	ListLeavesInBox int

	// IMaterialSystem / IMaterial
	FindMaterial  int
	AlphaModulate int
	ColorModulate int
	IncrementRef  int
}

// Offsets holds fixed byte offsets that are not part of the replication
// schema.
type Offsets struct {
	// Distance below the caller's frame pointer of its send_packet local.
	SendPacket uintptr

	Networkable uintptr

	// CInput
	InputThirdPerson  uintptr
	InputCameraOffset uintptr

	// CViewSetup
	ViewSetupFOV    uintptr
	ViewSetupOrigin uintptr
	ViewSetupAngles uintptr

	// ModelRenderInfo_t
	RenderInfoEntityIndex uintptr

	// RenderableInfo_t pointer below InsertIntoTree's frame pointer.
	LeafRenderableInfo uintptr
}

// Interface names a versioned interface and the module exporting it.
type Interface struct {
	Module  string
	Version string
}

type Interfaces struct {
	Client         Interface
	Engine         Interface
	EntityList     Interface
	Input          Interface
	Physics        Interface
	MaterialSystem Interface
	Cvar           Interface
	Surface        Interface
	ModelRender    Interface
}

// Patterns are byte signatures located by scanning executable ranges.
type Patterns struct {
	// Return site of the ListLeavesInBox call inside
	// CClientLeafSystem::InsertIntoTree, and the distance from the match
	// start to that return address.
	InsertIntoTree       string
	InsertIntoTreeReturn uintptr
}

// Symbols exported by name from the SDL and tier0 shared objects.
type Symbols struct {
	SDLLibrary     string
	SwapWindow     string
	PollEvent      string
	GetWindowTitle string

	LogMessage string
	LogDirect  string

	LauncherMain string
}

// Version bundles every build-specific constant.
type Version struct {
	Name       string
	Modules    []string
	Slots      Slots
	Offsets    Offsets
	Interfaces Interfaces
	Patterns   Patterns
	Symbols    Symbols
	Materials  []string
}

var Current = Version{
	Name: "csgo-linux64-1.38.7.9",

	// Load order after launcher and libtier0.
	Modules: []string{
		"libvstdlib",
		"filesystem_stdio",
		"inputsystem",
		"materialsystem",
		"vphysics",
		"vguimatsurface",
		"engine",
		"client",
	},

	Slots: Slots{
		GetAllClasses:    8,
		HudProcessInput:  10,
		HudUpdate:        11,
		ActivateMouse:    16,
		FrameStageNotify: 37,

		OverrideView: 19,
		CreateMove:   25,

		GetLocalPlayer:  12,
		GetViewAngles:   18,
		SetViewAngles:   19,
		IsInGame:        26,
		GetBSPTreeQuery: 43,

		GetClientEntity:           3,
		GetClientEntityFromHandle: 4,
		GetHighestEntityIndex:     6,

		GetClientClass: 2,
		IsDormant:      9,

		GetClientUnknown: 0,
		GetBaseEntity:    7,

		ForcedMaterialOverride: 1,
		DrawModelExecute:       21,

		ListLeavesInBox: 6,

		FindMaterial:  84,
		AlphaModulate: 27,
		ColorModulate: 28,
		IncrementRef:  14,
	},

	Offsets: Offsets{
		SendPacket:  0x18,
		Networkable: 0x10,

		InputThirdPerson:  0xA9,
		InputCameraOffset: 0xB0,

		ViewSetupFOV:    0xB0,
		ViewSetupOrigin: 0xB8,
		ViewSetupAngles: 0xC4,

		RenderInfoEntityIndex: 0x44,

		LeafRenderableInfo: 0x950,
	},

	Interfaces: Interfaces{
		Client:         Interface{Module: "client", Version: "VClient018"},
		Engine:         Interface{Module: "engine", Version: "VEngineClient014"},
		EntityList:     Interface{Module: "client", Version: "VClientEntityList003"},
		Input:          Interface{Module: "inputsystem", Version: "InputSystemVersion001"},
		Physics:        Interface{Module: "vphysics", Version: "VPhysicsSurfaceProps001"},
		MaterialSystem: Interface{Module: "materialsystem", Version: "VMaterialSystem080"},
		Cvar:           Interface{Module: "libvstdlib", Version: "VEngineCvar007"},
		Surface:        Interface{Module: "vguimatsurface", Version: "VGUI_Surface031"},
		ModelRender:    Interface{Module: "engine", Version: "VEngineModel016"},
	},

	Patterns: Patterns{
		InsertIntoTree:       "E8 ?? ?? ?? ?? 48 8B 85 ?? ?? ?? ?? 89 C3 85 C0",
		InsertIntoTreeReturn: 5,
	},

	Symbols: Symbols{
		SDLLibrary:     "libSDL2-2.0.so.0",
		SwapWindow:     "SDL_GL_SwapWindow",
		PollEvent:      "SDL_PollEvent",
		GetWindowTitle: "SDL_GetWindowTitle",

		LogMessage: "LoggingSystem_Log",
		LogDirect:  "LoggingSystem_LogDirect",

		LauncherMain: "LauncherMain",
	},

	Materials: []string{
		"debug/debugambientcube",
		"debug/debugdrawflat",
	},
}
