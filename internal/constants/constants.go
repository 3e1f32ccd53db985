package constants

// Version is the clong release, overridden at link time with
// -ldflags "-X github.com/xonecas/clong/internal/constants.Version=...".
var Version = "dev"

// SyntaxTheme is the default Chroma theme for coloured dumps.
//
// Dark themes that suit terminals: monokai, dracula, nord, gruvbox, onedark,
// github-dark, solarized-dark, catppuccin-mocha, tokyonight-night, vulcan.
// Light themes: github, solarized-light, gruvbox-light, catppuccin-latte, vs.
const SyntaxTheme = "github-dark"

// OutputDir is the default target of the site emitter.
const OutputDir = "_doc"

// ConfigFile is looked up in the working directory when --config is not given.
const ConfigFile = ".clong.toml"

// LogLevel is the default zerolog level.
const LogLevel = "warn"

// MaxFileBytes bounds the size of files picked up by walking directories.
const MaxFileBytes = 1 << 20

// Extensions are the source file extensions collected from directories.
var Extensions = []string{".h", ".hh", ".hpp", ".hxx", ".c", ".cc", ".cpp", ".cxx"}

// Colour modes for --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
