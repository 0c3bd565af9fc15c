// Package shell is the interactive terminal client. It signs the user in,
// browses their files and drives the per-file action menu.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/storeit-dev/storeit/internal/access"
	"github.com/storeit-dev/storeit/pkg/actionmenu"
	"github.com/storeit-dev/storeit/pkg/client"
	"github.com/storeit-dev/storeit/pkg/schemas"
)

type Shell struct {
	api *client.Client
	out io.Writer

	email string
}

func New(api *client.Client) *Shell {
	return &Shell{api: api, out: os.Stdout}
}

// Run signs in and loops over the file list until the user quits or aborts.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.logIn(ctx); err != nil {
		return err
	}

	for {
		if err := s.browse(ctx); err != nil {
			if err == ErrAborted {
				return nil
			}
			return err
		}
	}
}

func (s *Shell) logIn(ctx context.Context) error {
	email, err := promptInput("Email", "")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}

	out, err := s.api.LogIn(ctx, email, password)
	if err != nil {
		return err
	}

	s.email = out.User.Email
	fmt.Fprintf(s.out, "signed in as %s\n", out.User.Email)
	return nil
}

func (s *Shell) browse(ctx context.Context) error {
	list, err := s.api.ListFiles(ctx, nil)
	if err != nil {
		return err
	}

	labels := make([]string, 0, len(list.Files)+1)
	for _, f := range list.Files {
		owner := "you"
		if f.OwnerEmail != s.email {
			owner = f.OwnerEmail
		}
		labels = append(labels, fmt.Sprintf("%s  %s  (%s)", f.Name, humanize.Bytes(uint64(f.Size)), owner))
	}
	labels = append(labels, "quit")

	idx, err := promptSelect(fmt.Sprintf("Files (%d)", list.Total), labels)
	if err != nil {
		return err
	}
	if idx == len(list.Files) {
		return ErrAborted
	}

	return s.fileMenu(ctx, &list.Files[idx])
}

func (s *Shell) fileMenu(ctx context.Context, file *schemas.FileOut) error {
	view := access.FileView{OwnerEmail: file.OwnerEmail, Users: file.Users}
	menu := actionmenu.New(view, s.email, &clientMutator{
		api:  s.api,
		file: file,
		out:  s.out,
	})

	actions := menu.Actions()
	labels := make([]string, 0, len(actions)+1)
	for _, a := range actions {
		labels = append(labels, string(a))
	}
	labels = append(labels, "back")

	idx, err := promptSelect(file.Name, labels)
	if err != nil {
		return err
	}
	if idx == len(actions) {
		return nil
	}

	action := actions[idx]
	if err := menu.Choose(ctx, action); err != nil {
		return err
	}
	if menu.State() == actionmenu.StateIdle {
		// download already ran
		return nil
	}
	menu.MenuClosed()

	switch action {
	case access.ActionDetails:
		s.printDetails(file)
	case access.ActionRename:
		name, err := promptInput("New name", file.Name)
		if err != nil {
			menu.Cancel()
			return nil
		}
		menu.SetName(name)
	case access.ActionShare:
		raw, err := promptInput("Emails (comma separated)", strings.Join(file.Users, ","))
		if err != nil {
			menu.Cancel()
			return nil
		}
		menu.SetEmails(splitEmails(raw), access.ModeOverwrite)
	case access.ActionRemoveSelf, access.ActionDelete:
		ok, err := promptConfirm(fmt.Sprintf("Really %s %q", action, file.Name))
		if err != nil || !ok {
			menu.Cancel()
			return nil
		}
	}

	if err := menu.Confirm(ctx); err != nil {
		fmt.Fprintf(s.out, "%s failed: %v\n", action, err)
		menu.Cancel()
		return nil
	}

	fmt.Fprintf(s.out, "%s done\n", action)
	return nil
}

func (s *Shell) printDetails(file *schemas.FileOut) {
	fmt.Fprintf(s.out, "name:      %s\n", file.Name)
	fmt.Fprintf(s.out, "type:      %s\n", file.Type)
	fmt.Fprintf(s.out, "size:      %s\n", humanize.Bytes(uint64(file.Size)))
	fmt.Fprintf(s.out, "owner:     %s\n", file.OwnerEmail)
	fmt.Fprintf(s.out, "shared:    %s\n", strings.Join(file.Users, ", "))
	fmt.Fprintf(s.out, "created:   %s\n", humanize.Time(file.CreatedAt))
}

func splitEmails(raw string) []string {
	parts := strings.Split(raw, ",")
	emails := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}

// clientMutator executes menu actions against the server for one file.
type clientMutator struct {
	api  *client.Client
	file *schemas.FileOut
	out  io.Writer
}

func (m *clientMutator) Rename(ctx context.Context, name string) error {
	_, err := m.api.RenameFile(ctx, m.file.ID, &schemas.RenameFile{Name: name, Path: "/files"})
	return err
}

func (m *clientMutator) UpdateUsers(ctx context.Context, emails []string, mode access.Mode) error {
	_, err := m.api.UpdateFileUsers(ctx, m.file.ID, &schemas.UpdateFileUsers{
		Emails: emails,
		Mode:   string(mode),
		Path:   "/files",
	})
	return err
}

func (m *clientMutator) Delete(ctx context.Context) error {
	return m.api.DeleteFile(ctx, m.file.ID, "/files")
}

func (m *clientMutator) Download(ctx context.Context) error {
	content, err := m.api.DownloadFile(ctx, m.file.ID)
	if err != nil {
		return err
	}
	defer content.Close()

	dest, err := os.Create(m.file.Name)
	if err != nil {
		return err
	}
	defer dest.Close()

	if _, err := io.Copy(dest, content); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "saved %s\n", m.file.Name)
	return nil
}
