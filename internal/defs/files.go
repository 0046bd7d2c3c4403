package defs

// Well-known paths inside a ZMK config repo. All paths are relative to the
// repo root unless noted otherwise.
const (
	// ConfigDir holds the user's keymaps, .conf files, and the west manifest.
	ConfigDir = "config"

	// ProjectManifest is the west manifest listing the firmware module and
	// all extension modules.
	ProjectManifest = "config/west.yml"

	// BuildMatrix is the declarative list of build targets consumed by the
	// firmware build pipeline.
	BuildMatrix = "build.yaml"

	// ModuleManifest is the Zephyr module manifest, relative to a module root.
	ModuleManifest = "zephyr/module.yml"

	// WestStagingDir is the hidden directory where west materializes module
	// source trees.
	WestStagingDir = ".zmk"

	// WestConfig is the west application config, relative to the staging dir.
	// Its absence means west has not been initialized yet.
	WestConfig = ".west/config"

	// ModulesSubdir is where external modules are checked out inside the
	// staging dir.
	ModulesSubdir = "modules"

	// HardwareMetaSuffix identifies hardware metadata files anywhere under a
	// module's board root.
	HardwareMetaSuffix = ".zmk.yml"
)

// SettingsFile is the user settings file name under the OS config dir.
const SettingsFile = "zmk.toml"
