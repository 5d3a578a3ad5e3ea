// Package seed loads the settings seed file that provides initial module properties
// for a fresh installation.
package seed

// File is a settings seed. Modules maps a settings module to its properties.
type File struct {
	Name        string                       `json:"name" yaml:"name"`
	Version     string                       `json:"version" yaml:"version"`
	Description string                       `json:"description,omitempty" yaml:"description,omitempty"`
	Modules     map[string]map[string]string `json:"modules" yaml:"modules"`
}

// rawFile is the on-disk shape. Property values may be written as strings, numbers or
// booleans.
type rawFile struct {
	Name        string                            `json:"name" yaml:"name"`
	Version     string                            `json:"version" yaml:"version"`
	Description string                            `json:"description,omitempty" yaml:"description,omitempty"`
	Modules     map[string]map[string]interface{} `json:"modules" yaml:"modules"`
}

// SupportedVersions is the constraint a seed file version must satisfy.
const SupportedVersions = "^1"
