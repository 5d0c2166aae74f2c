package entity

import (
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/netvar"
)

// Source is the game's view of the entity list.
type Source interface {
	ClientEntity(index int32) uintptr
	ClientEntityFromHandle(handle uint32) uintptr
	HighestIndex() int32
	LocalPlayerIndex() int32
	Dormant(entity uintptr) bool
	ClassName(entity uintptr) string
}

// List resolves entity references against a Source and a property table.
type List struct {
	source Source
	props  *netvar.Offsets
}

func NewList(source Source, props *netvar.Offsets) *List {
	return &List{source: source, props: props}
}

// Get returns the entity at index. Missing and dormant entities are not
// returned.
func (l *List) Get(index int32) (Ref, bool) {
	return l.ref(l.source.ClientEntity(index))
}

// FromHandle resolves a networked entity handle.
func (l *List) FromHandle(handle uint32) (Ref, bool) {
	if handle == InvalidHandle {
		return Ref{}, false
	}
	return l.ref(l.source.ClientEntityFromHandle(handle))
}

// LocalPlayer returns the local player's entity.
func (l *List) LocalPlayer() (Ref, bool) {
	return l.Get(l.source.LocalPlayerIndex())
}

// Each calls f for every present, non-dormant entity in index order.
func (l *List) Each(f func(index int32, ref Ref)) {
	highest := l.source.HighestIndex()
	for i := int32(0); i <= highest; i++ {
		if ref, ok := l.Get(i); ok {
			f(i, ref)
		}
	}
}

// OfClass returns the live entities whose client class is named class.
func (l *List) OfClass(class string) []Ref {
	var refs []Ref
	l.Each(func(_ int32, ref Ref) {
		if ref.Class() == class {
			refs = append(refs, ref)
		}
	})
	return refs
}

// At wraps an entity address obtained outside the list.
func (l *List) At(address uintptr) (Ref, bool) {
	return l.ref(address)
}

func (l *List) ref(address uintptr) (Ref, bool) {
	if address == 0 || l.source.Dormant(address) {
		return Ref{}, false
	}
	return Ref{Address: address, list: l}, true
}

// Ref is a live entity. Accessors read networked properties at their
// resolved offsets and are only meaningful inside a frame stage.
type Ref struct {
	Address uintptr
	list    *List
}

func get[T any](r Ref, name string) T {
	return netvar.Read[T](r.list.props, r.Address, name)
}

func set[T any](r Ref, name string, value T) {
	netvar.Write(r.list.props, r.Address, name, value)
}

func (r Ref) Class() string {
	return r.list.source.ClassName(r.Address)
}

func (r Ref) Origin() Vec3      { return get[Vec3](r, netvar.EntityOrigin) }
func (r Ref) Team() Team        { return get[Team](r, netvar.EntityTeam) }
func (r Ref) ModelIndex() int32 { return get[int32](r, netvar.EntityModelIndex) }
func (r Ref) Owner() uint32     { return get[uint32](r, netvar.EntityOwner) }
func (r Ref) Velocity() Vec3    { return get[Vec3](r, netvar.PlayerVelocity) }
func (r Ref) ViewOffset() Vec3  { return get[Vec3](r, netvar.PlayerViewOffset) }
func (r Ref) Flags() Flags      { return get[Flags](r, netvar.PlayerFlags) }
func (r Ref) Health() int32     { return get[int32](r, netvar.PlayerHealth) }
func (r Ref) TickBase() int32   { return get[int32](r, netvar.PlayerTickBase) }
func (r Ref) AimPunch() Vec3    { return get[Vec3](r, netvar.PlayerAimPunch) }
func (r Ref) ViewPunch() Vec3   { return get[Vec3](r, netvar.PlayerViewPunch) }
func (r Ref) Armor() int32      { return get[int32](r, netvar.CSPlayerArmor) }
func (r Ref) HasHelmet() bool   { return get[bool](r, netvar.CSPlayerHelmet) }
func (r Ref) Scoped() bool      { return get[bool](r, netvar.CSPlayerScoped) }
func (r Ref) ViewAngle() Vec3   { return get[Vec3](r, netvar.CSPlayerEyeAngles) }
func (r Ref) LowerBodyYaw() float32 {
	return get[float32](r, netvar.CSPlayerLowerBodyYaw)
}

func (r Ref) LifeState() LifeState {
	return get[LifeState](r, netvar.PlayerLifeState)
}

func (r Ref) Alive() bool {
	return r.LifeState() == Alive && r.Health() > 0
}

func (r Ref) ObserverMode() ObserverMode {
	return get[ObserverMode](r, netvar.PlayerObserverMode)
}

// ObserverTarget returns the entity being spectated, if any.
func (r Ref) ObserverTarget() (Ref, bool) {
	return r.list.FromHandle(get[uint32](r, netvar.PlayerObserverTarget))
}

// ActiveWeapon returns the weapon entity the player holds.
func (r Ref) ActiveWeapon() (Ref, bool) {
	return r.list.FromHandle(get[uint32](r, netvar.PlayerActiveWeapon))
}

// EyePosition is the origin plus the view offset.
func (r Ref) EyePosition() Vec3 {
	return r.Origin().Add(r.ViewOffset())
}

func (r Ref) SetViewAngle(v Vec3)        { set(r, netvar.CSPlayerEyeAngles, v) }
func (r Ref) SetFlashMaxAlpha(a float32) { set(r, netvar.CSPlayerFlashMaxAlpha, a) }
func (r Ref) SetFlags(f Flags)           { set(r, netvar.PlayerFlags, f) }

func (r Ref) Clip() int32 { return get[int32](r, netvar.WeaponClip) }

func (r Ref) ItemIndex() int16 { return get[int16](r, netvar.WeaponItemIndex) }

func (r Ref) NextPrimaryAttack() float32 {
	return get[float32](r, netvar.WeaponNextPrimaryAttack)
}

// Field reads a property that has no dedicated accessor.
func Field[T any](r Ref, name string) T {
	return get[T](r, name)
}

// SetField writes a property that has no dedicated setter.
func SetField[T any](r Ref, name string, value T) {
	set(r, name, value)
}

// Globals reads the global-vars block through the pointer stored at slot.
func Globals(slot uintptr) (GlobalVars, bool) {
	if slot == 0 {
		return GlobalVars{}, false
	}
	base := memory.ReadPointer(slot)
	if base == 0 {
		return GlobalVars{}, false
	}
	return memory.Read[GlobalVars](base), true
}
