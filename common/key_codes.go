package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW = 87 // W key (ASCII)
	KeyA = 65 // A key (ASCII)
	KeyS = 83 // S key (ASCII)
	KeyD = 68 // D key (ASCII)
	KeyB = 66 // B key (ASCII)
	KeyG = 71 // G key (ASCII)
	KeyM = 77 // M key (ASCII)
	KeyT = 84 // T key (ASCII)
	KeyX = 88 // X key (ASCII)

	KeySpace = 32  // Spacebar (ASCII)
	KeyTab   = 258 // Tab key (GLFW)
	KeyEsc   = 256 // Escape key (GLFW)
	KeyF12   = 301 // F12 key (GLFW)
)
