package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bricklabels.dev/internal/label"
	"bricklabels.dev/internal/persistence/archive"
	"bricklabels.dev/internal/protocol"
)

const defaultExportFile = "labels.json"

// Bounded spatial query around an interacted position; a default-size
// brick always fits.
var brickQueryExtent = [3]int{100, 100, 100}

func (s *Service) dispatch(ctx context.Context, p protocol.PlayerInfo, sub string, args []string) error {
	if !s.canUseLabels(p) {
		return cmdErr(protocol.ErrUnauthorized, "You do not have permission to use labels.")
	}
	switch sub {
	case "add":
		return s.cmdAdd(ctx, p, args)
	case "remove":
		return s.cmdRemove(ctx, p)
	case "display":
		return s.cmdDisplay(ctx, p, args)
	case "check":
		return s.cmdCheck(ctx, p, args)
	case "reset":
		return s.cmdReset(p, args)
	case "move":
		return s.cmdMove(ctx, p)
	case "copy":
		return s.cmdCopy(ctx, p)
	case "export":
		return s.cmdExport(p, args)
	case "import":
		return s.cmdImport(p, args)
	default:
		return cmdErr(protocol.ErrBadRequest, fmt.Sprintf("Unknown labels command %q.", sub))
	}
}

// awaitInteraction registers a wait slot for p and suspends the
// workflow until the player's next interaction.
func (s *Service) awaitInteraction(ctx context.Context, p protocol.PlayerInfo) (protocol.Interaction, error) {
	w := s.corr.Register(p.ID)
	return s.corr.Await(ctx, p.ID, w, s.waitTimeout)
}

// interactionAndBrick waits for an interaction and looks up the brick
// at that exact position in the save data around it. A nil brick with
// nil error means no brick matched (oversized or subdivided brick).
func (s *Service) interactionAndBrick(ctx context.Context, p protocol.PlayerInfo) (protocol.Interaction, *protocol.SaveData, *protocol.Brick, error) {
	it, err := s.awaitInteraction(ctx, p)
	if err != nil {
		return it, nil, nil, err
	}
	center := it.Position
	extent := brickQueryExtent
	data, err := s.host.SaveData(ctx, &center, &extent)
	if err != nil {
		s.log.Printf("save data query at %v: %v", it.Position, err)
		return it, nil, nil, errWorldQuery
	}
	if data == nil || data.Version != protocol.SaveDataVersion {
		return it, nil, nil, errWorldQuery
	}
	for i := range data.Bricks {
		if data.Bricks[i].Position == it.Position {
			return it, data, &data.Bricks[i], nil
		}
	}
	return it, data, nil, nil
}

// brickOwnedBy resolves a brick's 1-based owner index; index 0 is
// unowned and never matches.
func brickOwnedBy(data *protocol.SaveData, b *protocol.Brick, playerID string) bool {
	if b.OwnerIndex <= 0 || b.OwnerIndex > len(data.BrickOwners) {
		return false
	}
	return data.BrickOwners[b.OwnerIndex-1].ID == playerID
}

func (s *Service) cmdAdd(ctx context.Context, p protocol.PlayerInfo, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		return cmdErr(protocol.ErrBadRequest, "Please specify a message to put in the label!")
	}

	s.host.Whisper(p.ID, "Please interact with the brick you want to add a label to. It must have the Interact component.")
	it, data, brick, err := s.interactionAndBrick(ctx, p)
	if err != nil {
		return err
	}
	if brick == nil {
		return cmdErr(protocol.ErrBadRequest, "Please use a smaller brick!")
	}
	pos := label.FromArray(it.Position)

	if existing, ok := s.store.Get(pos); ok {
		if existing.Owner.ID != p.ID {
			return cmdErr(protocol.ErrAlreadyExists, "Another user already has a label here!")
		}
		existing.Text = text
		if err := s.store.Put(pos, existing); err != nil {
			return err
		}
		s.host.Whisper(p.ID, "That label has been updated.")
		return nil
	}

	if !s.isAuthed(p) && !brickOwnedBy(data, brick, p.ID) {
		return cmdErr(protocol.ErrNotOwner, "You cannot put a label on another player's brick!")
	}
	if s.cfg.MaxLabels != 0 && s.store.CountByOwner(p.ID) >= s.cfg.MaxLabels {
		return cmdErr(protocol.ErrQuotaExceeded, "You have placed the maximum number of labels! Remove some to add a new one.")
	}

	l := label.Label{Text: text, Owner: label.Player{ID: p.ID, Name: p.Name}}
	if err := s.store.Put(pos, l); err != nil {
		return err
	}
	s.host.Whisper(p.ID, "The label has been created.")
	s.log.Printf("%s created a label at %s", p.Name, pos.Key())
	return nil
}

func (s *Service) cmdRemove(ctx context.Context, p protocol.PlayerInfo) error {
	s.host.Whisper(p.ID, "Click the label brick to remove its label.")
	it, err := s.awaitInteraction(ctx, p)
	if err != nil {
		return err
	}
	pos := label.FromArray(it.Position)

	l, ok := s.store.Get(pos)
	if !ok {
		return cmdErr(protocol.ErrNotFound, "That brick doesn't have a label assigned! Make sure it is the original size.")
	}
	if l.Owner.ID != p.ID && !s.isAuthed(p) {
		return cmdErr(protocol.ErrNotOwner, "You can't remove a label that isn't yours!")
	}
	if err := s.store.Remove(pos); err != nil && !errors.Is(err, label.ErrNotFound) {
		return err
	}
	s.host.Whisper(p.ID, "The label has been removed.")
	return nil
}

func (s *Service) cmdDisplay(ctx context.Context, p protocol.PlayerInfo, args []string) error {
	mode := ""
	if len(args) > 0 {
		mode = args[0]
	}
	if !label.ValidDisplay(mode) {
		return cmdErr(protocol.ErrBadRequest, "Please pass either 'middle' or 'chat' for a display mode.")
	}

	s.host.Whisper(p.ID, fmt.Sprintf("Click the label brick whose display you want to change to %q.", mode))
	it, err := s.awaitInteraction(ctx, p)
	if err != nil {
		return err
	}
	pos := label.FromArray(it.Position)

	l, ok := s.store.Get(pos)
	if !ok {
		return cmdErr(protocol.ErrNotFound, "That brick doesn't have a label assigned! Make sure it is the original size.")
	}
	if l.Owner.ID != p.ID && !s.isAuthed(p) {
		return cmdErr(protocol.ErrNotOwner, "You can't edit a label that isn't yours!")
	}
	l.Display = label.Display(mode)
	if err := s.store.Put(pos, l); err != nil {
		return err
	}
	s.host.Whisper(p.ID, fmt.Sprintf("Updated the label's display destination to %q.", mode))
	return nil
}

func (s *Service) cmdCheck(ctx context.Context, p protocol.PlayerInfo, args []string) error {
	if !s.isAuthed(p) {
		return nil
	}
	if len(args) == 0 || args[0] != "yes" {
		s.host.Whisper(p.ID, "Are you sure you want to check and remove invalid labels? "+
			"This will remove all labels that do not align with bricks. "+
			"Be sure you run this command on the same map you made the labels. "+
			"If you wish to proceed, pass 'yes' to this command.")
		return nil
	}

	data, err := s.host.SaveData(ctx, nil, nil)
	if err != nil {
		s.log.Printf("full save data query: %v", err)
		return errWorldQuery
	}
	if data == nil || data.Version != protocol.SaveDataVersion {
		return errWorldQuery
	}

	valid := make(map[string]struct{}, len(data.Bricks))
	for _, b := range data.Bricks {
		valid[label.FromArray(b.Position).Key()] = struct{}{}
	}
	removed, err := s.store.ReconcileAgainstWorld(valid)
	if err != nil {
		return err
	}
	s.host.Whisper(p.ID, fmt.Sprintf("Removed %d invalid labels.", removed))
	return nil
}

func (s *Service) cmdReset(p protocol.PlayerInfo, args []string) error {
	if !s.isAuthed(p) {
		return nil
	}
	if len(args) == 0 || args[0] != "yes" {
		s.host.Whisper(p.ID, "Are you sure you want to reset all labels? This cannot be undone. If so, pass 'yes' to this command.")
		return nil
	}

	s.backupLabels("reset")
	if err := s.store.ReplaceAll(nil); err != nil {
		return err
	}
	s.host.Whisper(p.ID, "Reset all labels.")
	return nil
}

func (s *Service) cmdMove(ctx context.Context, p protocol.PlayerInfo) error {
	s.host.Whisper(p.ID, "1) Interact with the brick whose label you want to move from.")
	itA, err := s.awaitInteraction(ctx, p)
	if err != nil {
		return err
	}
	from := label.FromArray(itA.Position)

	l, ok := s.store.Get(from)
	if !ok {
		return cmdErr(protocol.ErrNotFound, "That brick does not have a label on it!")
	}
	if l.Owner.ID != p.ID && !s.isAuthed(p) {
		return cmdErr(protocol.ErrNotOwner, "You can't move a label that isn't yours!")
	}

	s.host.Whisper(p.ID, "2) Now interact with the brick whose label you want to move to.")
	to, err := s.destinationBrick(ctx, p, "move")
	if err != nil {
		return err
	}

	// The store re-checks both positions under its lock; either wait
	// may have been long enough for another workflow to change them.
	switch err := s.store.Move(from, to); {
	case errors.Is(err, label.ErrNotFound):
		return cmdErr(protocol.ErrNotFound, "That brick does not have a label on it!")
	case errors.Is(err, label.ErrExists):
		return cmdErr(protocol.ErrAlreadyExists, "That brick has a label on it! Please remove it first.")
	case err != nil:
		return err
	}
	s.host.Whisper(p.ID, "The label has been moved.")
	return nil
}

func (s *Service) cmdCopy(ctx context.Context, p protocol.PlayerInfo) error {
	s.host.Whisper(p.ID, "1) Interact with the brick whose label you want to copy.")
	itA, err := s.awaitInteraction(ctx, p)
	if err != nil {
		return err
	}
	from := label.FromArray(itA.Position)

	if _, ok := s.store.Get(from); !ok {
		return cmdErr(protocol.ErrNotFound, "That brick does not have a label on it!")
	}

	s.host.Whisper(p.ID, "2) Now interact with the brick whose label you want to copy to.")
	to, err := s.destinationBrick(ctx, p, "copy")
	if err != nil {
		return err
	}

	switch err := s.store.Copy(from, to); {
	case errors.Is(err, label.ErrNotFound):
		return cmdErr(protocol.ErrNotFound, "That brick does not have a label on it!")
	case errors.Is(err, label.ErrExists):
		return cmdErr(protocol.ErrAlreadyExists, "That brick has a label on it! Please remove it first.")
	case err != nil:
		return err
	}
	s.host.Whisper(p.ID, "The label has been copied.")
	return nil
}

// destinationBrick runs the second interaction step shared by move and
// copy: the target must be a real brick, must not carry a label yet,
// and must be the player's own unless they are authorized.
func (s *Service) destinationBrick(ctx context.Context, p protocol.PlayerInfo, verb string) (label.Vec3i, error) {
	it, data, brick, err := s.interactionAndBrick(ctx, p)
	if err != nil {
		return label.Vec3i{}, err
	}
	if brick == nil {
		return label.Vec3i{}, cmdErr(protocol.ErrBadRequest, "Please use a smaller brick!")
	}
	to := label.FromArray(it.Position)
	if _, taken := s.store.Get(to); taken {
		return label.Vec3i{}, cmdErr(protocol.ErrAlreadyExists, "That brick has a label on it! Please remove it first.")
	}
	if !s.isAuthed(p) && !brickOwnedBy(data, brick, p.ID) {
		return label.Vec3i{}, cmdErr(protocol.ErrNotOwner, fmt.Sprintf("You cannot %s a label to a brick that is not yours!", verb))
	}
	return to, nil
}

func (s *Service) cmdExport(p protocol.PlayerInfo, args []string) error {
	if !s.isAuthed(p) {
		return nil
	}
	dest := strings.Join(args, " ")
	if dest == "" {
		dest = defaultExportFile
	}
	path := s.resolvePath(dest)

	b, err := json.MarshalIndent(s.store.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return err
	}
	s.host.Whisper(p.ID, fmt.Sprintf("Exported labels to %s.", dest))
	return nil
}

func (s *Service) cmdImport(p protocol.PlayerInfo, args []string) error {
	if !s.isAuthed(p) {
		return nil
	}
	// Confirmation token comes first here; the rest is the source path.
	if len(args) == 0 || args[0] != "yes" {
		rest := strings.Join(args, " ")
		msg := "This action will overwrite all existing labels. If you are positive, run /labels import yes"
		if rest != "" {
			msg += " " + rest
		}
		s.host.Whisper(p.ID, msg+".")
		return nil
	}

	dest := strings.Join(args[1:], " ")
	if dest == "" {
		dest = defaultExportFile
	}
	path := s.resolvePath(dest)

	importErr := cmdErr(protocol.ErrImportParse, fmt.Sprintf("An error occurred while importing from %s.", dest))
	raw, err := os.ReadFile(path)
	if err != nil {
		s.log.Printf("import %s: %v", path, err)
		return importErr
	}
	m, err := label.ParseMap(raw)
	if err != nil {
		s.log.Printf("import %s: %v", path, err)
		return importErr
	}

	s.backupLabels("import")
	if err := s.store.ReplaceAll(m); err != nil {
		return err
	}
	s.host.Whisper(p.ID, fmt.Sprintf("Imported labels from %s.", dest))
	return nil
}

// resolvePath anchors relative export/import destinations in the data
// directory.
func (s *Service) resolvePath(dest string) string {
	if filepath.IsAbs(dest) {
		return dest
	}
	return filepath.Join(s.dataDir, dest)
}

// backupLabels archives the current map before a destructive rewrite.
// Failure to back up is logged but does not block the command.
func (s *Service) backupLabels(reason string) {
	if s.store.Len() == 0 {
		return
	}
	path, err := archive.Write(filepath.Join(s.dataDir, "backups"), s.store.Snapshot())
	if err != nil {
		s.log.Printf("backup before %s: %v", reason, err)
		return
	}
	s.log.Printf("backed up labels to %s before %s", path, reason)
}
