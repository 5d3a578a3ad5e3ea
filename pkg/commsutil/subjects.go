package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectGateway      = "olat.gateway.v1"
	SubjectModuleChange = "olat.modules.changed"
)

// BuildModuleChangeSubject builds the granular change subject of one settings module.
func BuildModuleChangeSubject(module string) string {
	return fmt.Sprintf("%s.%s", SubjectModuleChange, sanitizeToken(module))
}

// sanitizeToken replaces characters that NATS treats as subject separators or wildcards.
func sanitizeToken(s string) string {
	r := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")
	return r.Replace(s)
}
