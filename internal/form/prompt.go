package form

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
)

// ErrCancelled is returned when the person abandons a dialog.
var ErrCancelled = errors.New("dialog cancelled")

// cancelInput aborts a dialog when entered at any prompt.
const cancelInput = "."

// Prompter fills dialogs line by line from a reader.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// readSecret reads one line without echo. Nil when in is not a terminal.
	readSecret func() ([]byte, error)
}

// NewPrompter creates a prompter reading answers from in and writing
// prompts to out. When in is a terminal, secrets are read without echo.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

// Line prints label and reads one answer. An empty answer keeps current.
func (p *Prompter) Line(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read answer: %w", err)
		}
		if line == "" {
			return "", ErrCancelled
		}
	}

	answer := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(answer) == cancelInput {
		return "", ErrCancelled
	}
	if strings.TrimSpace(answer) == "" {
		return current, nil
	}
	return answer, nil
}

// Secret prints label and reads one answer without echoing it when input is
// a terminal. Scripted input is read as a plain line. An empty answer is
// returned as is.
func (p *Prompter) Secret(label string) (string, error) {
	if p.readSecret == nil {
		return p.Line(label, "")
	}

	fmt.Fprintf(p.out, "%s: ", label)
	raw, err := p.readSecret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}

	answer := strings.TrimRight(string(raw), "\r\n")
	if strings.TrimSpace(answer) == cancelInput {
		return "", ErrCancelled
	}
	return answer, nil
}

// ReadCommand prints prompt and reads one raw line, trimmed. It returns
// io.EOF once input is exhausted.
func (p *Prompter) ReadCommand(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read command: %w", err)
		}
		if line == "" {
			return "", io.EOF
		}
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Anything but y or yes declines.
func (p *Prompter) Confirm(prompt string) bool {
	answer, err := p.Line(prompt+" [y/N]", "")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (p *Prompter) hint(c Counter) {
	fmt.Fprintf(p.out, "  %s\n", c)
}

// FillUser walks through the user dialog. Password is asked only when
// creating.
func (p *Prompter) FillUser(f *UserForm) error {
	fmt.Fprintf(p.out, "%s (enter %q to cancel)\n", f.Title(), cancelInput)

	var err error
	if f.Name, err = p.Line(LabelName, f.Name); err != nil {
		return err
	}
	p.hint(count("name", f.Name, NameMax))

	if f.Email, err = p.Line(LabelEmail, f.Email); err != nil {
		return err
	}
	if f.Mode == ModeCreate {
		if f.Password, err = p.Secret(LabelPassword); err != nil {
			return err
		}
	}
	if f.Address, err = p.Line(LabelAddress, f.Address); err != nil {
		return err
	}
	if f.Address != "" {
		p.hint(count("address", f.Address, AddressMax))
	}

	role, err := p.Line(fmt.Sprintf("%s (%s)", LabelRole, roleChoices()), string(f.Role))
	if err != nil {
		return err
	}
	f.Role = domain.Role(strings.ToUpper(strings.TrimSpace(role)))
	return nil
}

// FillStore walks through the store dialog. The owner is picked by number
// from owners.
func (p *Prompter) FillStore(f *StoreForm, owners []domain.User) error {
	fmt.Fprintf(p.out, "%s (enter %q to cancel)\n", f.Title(), cancelInput)

	var err error
	if f.Name, err = p.Line(LabelName, f.Name); err != nil {
		return err
	}
	p.hint(count("name", f.Name, NameMax))

	if f.Address, err = p.Line(LabelAddress, f.Address); err != nil {
		return err
	}
	p.hint(count("address", f.Address, AddressMax))

	owner, err := p.ChooseOwner(owners, f.OwnerID)
	if err != nil {
		return err
	}
	f.OwnerID = owner
	return nil
}

// ChooseOwner lists owners and reads a selection by number. An empty answer
// keeps current.
func (p *Prompter) ChooseOwner(owners []domain.User, current domain.ID) (domain.ID, error) {
	fmt.Fprintf(p.out, "%s:\n", LabelOwner)
	if len(owners) == 0 {
		fmt.Fprintln(p.out, "  no users with role OWNER")
		return current, nil
	}
	def := ""
	for i, o := range owners {
		fmt.Fprintf(p.out, "  %d) %s (%s)\n", i+1, o.Name, o.Email)
		if o.ID == current && !current.IsZero() {
			def = strconv.Itoa(i + 1)
		}
	}

	for {
		answer, err := p.Line("Select owner", def)
		if err != nil {
			return "", err
		}
		if answer == "" {
			return current, nil
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(answer))
		if convErr == nil && n >= 1 && n <= len(owners) {
			return owners[n-1].ID, nil
		}
		fmt.Fprintf(p.out, "  choose a number between 1 and %d\n", len(owners))
	}
}

func roleChoices() string {
	roles := domain.ValidRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
