package netvar

// Logical property names used by the entity accessors and the frame hooks.
const (
	EntityOrigin     = "base_entity.origin"
	EntityTeam       = "base_entity.team"
	EntityModelIndex = "base_entity.model_index"
	EntityOwner      = "base_entity.owner"

	PlayerVelocity       = "base_player.velocity"
	PlayerViewOffset     = "base_player.view_offset"
	PlayerFlags          = "base_player.flags"
	PlayerHealth         = "base_player.health"
	PlayerLifeState      = "base_player.life_state"
	PlayerObserverMode   = "base_player.observer_mode"
	PlayerObserverTarget = "base_player.observer_target"
	PlayerTickBase       = "base_player.tick_base"
	PlayerAimPunch       = "base_player.aim_punch"
	PlayerViewPunch      = "base_player.view_punch"
	PlayerActiveWeapon   = "base_player.active_weapon"

	CSPlayerArmor         = "cs_player.armor"
	CSPlayerHelmet        = "cs_player.has_helmet"
	CSPlayerEyeAngles     = "cs_player.eye_angles"
	CSPlayerScoped        = "cs_player.is_scoped"
	CSPlayerLowerBodyYaw  = "cs_player.lower_body_yaw"
	CSPlayerFlashMaxAlpha = "cs_player.flash_max_alpha"

	WeaponNextPrimaryAttack = "weapon.next_primary_attack"
	WeaponClip              = "weapon.clip"
	WeaponItemIndex         = "weapon.item_index"

	FogEnable         = "fog.enable"
	FogBlend          = "fog.blend"
	FogColorPrimary   = "fog.color_primary"
	FogColorSecondary = "fog.color_secondary"
	FogStart          = "fog.start"
	FogEnd            = "fog.end"
	FogMaxDensity     = "fog.max_density"

	TonemapUseExposureMin = "tonemap.use_exposure_min"
	TonemapUseExposureMax = "tonemap.use_exposure_max"
	TonemapUseBloomScale  = "tonemap.use_bloom_scale"
	TonemapExposureMin    = "tonemap.exposure_min"
	TonemapExposureMax    = "tonemap.exposure_max"
	TonemapBloomScale     = "tonemap.bloom_scale"
)

func want(name, table, prop string) Want {
	return Want{Name: name, Key: Key{Table: table, Prop: prop}}
}

// Interest is the fixed list of properties resolved at startup.
var Interest = []Want{
	want(EntityOrigin, "DT_BaseEntity", "m_vecOrigin"),
	want(EntityTeam, "DT_BaseEntity", "m_iTeamNum"),
	want(EntityModelIndex, "DT_BaseEntity", "m_nModelIndex"),
	want(EntityOwner, "DT_BaseEntity", "m_hOwnerEntity"),

	want(PlayerVelocity, "DT_BasePlayer", "m_vecVelocity[0]"),
	want(PlayerViewOffset, "DT_BasePlayer", "m_vecViewOffset[0]"),
	want(PlayerFlags, "DT_BasePlayer", "m_fFlags"),
	want(PlayerHealth, "DT_BasePlayer", "m_iHealth"),
	want(PlayerLifeState, "DT_BasePlayer", "m_lifeState"),
	want(PlayerObserverMode, "DT_BasePlayer", "m_iObserverMode"),
	want(PlayerObserverTarget, "DT_BasePlayer", "m_hObserverTarget"),
	want(PlayerTickBase, "DT_BasePlayer", "m_nTickBase"),
	want(PlayerAimPunch, "DT_BasePlayer", "m_aimPunchAngle"),
	want(PlayerViewPunch, "DT_BasePlayer", "m_viewPunchAngle"),
	want(PlayerActiveWeapon, "DT_BasePlayer", "m_hActiveWeapon"),

	want(CSPlayerArmor, "DT_CSPlayer", "m_ArmorValue"),
	want(CSPlayerHelmet, "DT_CSPlayer", "m_bHasHelmet"),
	want(CSPlayerEyeAngles, "DT_CSPlayer", "m_angEyeAngles[0]"),
	want(CSPlayerScoped, "DT_CSPlayer", "m_bIsScoped"),
	want(CSPlayerLowerBodyYaw, "DT_CSPlayer", "m_flLowerBodyYawTarget"),
	want(CSPlayerFlashMaxAlpha, "DT_CSPlayer", "m_flFlashMaxAlpha"),

	want(WeaponNextPrimaryAttack, "DT_WeaponCSBase", "m_flNextPrimaryAttack"),
	want(WeaponClip, "DT_WeaponCSBase", "m_iClip1"),
	want(WeaponItemIndex, "DT_WeaponCSBase", "m_iItemDefinitionIndex"),

	want(FogEnable, "DT_FogController", "m_fog.enable"),
	want(FogBlend, "DT_FogController", "m_fog.blend"),
	want(FogColorPrimary, "DT_FogController", "m_fog.colorPrimary"),
	want(FogColorSecondary, "DT_FogController", "m_fog.colorSecondary"),
	want(FogStart, "DT_FogController", "m_fog.start"),
	want(FogEnd, "DT_FogController", "m_fog.end"),
	want(FogMaxDensity, "DT_FogController", "m_fog.maxdensity"),

	want(TonemapUseExposureMin, "DT_EnvTonemapController", "m_bUseCustomAutoExposureMin"),
	want(TonemapUseExposureMax, "DT_EnvTonemapController", "m_bUseCustomAutoExposureMax"),
	want(TonemapUseBloomScale, "DT_EnvTonemapController", "m_bUseCustomBloomScale"),
	want(TonemapExposureMin, "DT_EnvTonemapController", "m_flCustomAutoExposureMin"),
	want(TonemapExposureMax, "DT_EnvTonemapController", "m_flCustomAutoExposureMax"),
	want(TonemapBloomScale, "DT_EnvTonemapController", "m_flCustomBloomScale"),
}
