package viewer

import "os/exec"

// System implements the Viewer interface for desktop openers (xdg-open, open)
// that hand the target to the user's default application.
type System struct {
	name string
}

func (s *System) Name() string { return s.name }

func (s *System) Available() bool {
	_, err := exec.LookPath(s.name)
	return err == nil
}

// Open passes target to the desktop opener.
func (s *System) Open(target string) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	return start(s.name, target)
}
