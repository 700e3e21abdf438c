package viewer

import "os/exec"

// Generic implements the Viewer interface for image viewers like feh and imv
// that take the target as their only argument.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool {
	_, err := exec.LookPath(g.name)
	return err == nil
}

// Open launches the viewer on target. "--" ends option parsing so a target
// can never be read as a flag.
func (g *Generic) Open(target string) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	return start(g.name, "--", target)
}
