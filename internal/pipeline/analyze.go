package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/stickerpress/internal/config"
	"github.com/backmassage/stickerpress/internal/display"
	"github.com/backmassage/stickerpress/internal/logging"
	"github.com/backmassage/stickerpress/internal/lottie"
)

// Analyze prints a per-file animation report without converting anything.
// Returns the number of files that could not be decoded.
func Analyze(cfg *config.Config, log *logging.Logger) int {
	files, _, err := resolveInputs(cfg.InputPath)
	if err != nil {
		log.Error("Input discovery failed: %v", err)
		return 1
	}
	if len(files) == 0 {
		log.Warn("No sticker files found in %s", cfg.InputPath)
		return 0
	}

	failed := 0
	for _, path := range files {
		if err := analyzeFile(path); err != nil {
			log.Error("%s: %v", filepath.Base(path), err)
			failed++
		}
	}
	return failed
}

func analyzeFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	anim, err := lottie.ParseFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", filepath.Base(path))
	if anim.Name != "" && anim.Name != filepath.Base(path) {
		fmt.Printf("  name:      %s\n", anim.Name)
	}
	fmt.Printf("  frames:    %d\n", anim.TotalFrames)
	fmt.Printf("  framerate: %.2f fps\n", anim.FrameRate)
	fmt.Printf("  duration:  %s\n", display.FormatSeconds(anim.Duration()))
	fmt.Printf("  canvas:    %dx%d\n", anim.Width, anim.Height)
	fmt.Printf("  size:      %s\n", display.FormatBytes(fi.Size()))
	fmt.Println()
	return nil
}
