// Package service composes the outfit store, assignment table, classifier,
// reconciliation engine and change monitor into the operations exposed to
// the bridge and the CLI. Every method must run on the apply context.
package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wardrobe/internal/cache"
	"wardrobe/internal/host"
	"wardrobe/internal/item"
	"wardrobe/internal/monitor"
	"wardrobe/internal/reconcile"
	"wardrobe/internal/situation"
	"wardrobe/internal/wardrobe"
)

var (
	ErrUntracked    = errors.New("character is not tracked")
	ErrPlayer       = errors.New("the player is always tracked")
	ErrEquipBlocked = errors.New("item is not part of the current outfit")
)

// Settings are the persisted switches of the outfit system.
type Settings struct {
	Enabled          bool
	PlayerMode       reconcile.Policy
	NPCMode          reconcile.Policy
	QuickSlotEnabled bool
	ClimatePriority  bool
}

func DefaultSettings() Settings {
	return Settings{Enabled: true, PlayerMode: reconcile.Disabled, NPCMode: reconcile.Disabled}
}

type Options struct {
	Monitor monitor.Options
}

type Service struct {
	host        host.Host
	outfits     *wardrobe.Store
	assignments *wardrobe.Assignments
	cache       *cache.Cache
	engine      *reconcile.Engine
	monitor     *monitor.Monitor
	settings    Settings
	logger      *zap.Logger
}

var _ monitor.Subject = (*Service)(nil)

// New builds a service for a fresh session. poster is the apply context the
// monitor posts its checks to.
func New(h host.Host, poster monitor.Poster, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	outfits := wardrobe.NewStore(logger)
	c := cache.New()
	s := &Service{
		host:        h,
		outfits:     outfits,
		assignments: outfits.Assignments(),
		cache:       c,
		engine:      reconcile.NewEngine(h, outfits.Assignments(), c, logger),
		logger:      logger,
	}
	s.monitor = monitor.New(h, s, poster, opts.Monitor, logger.Named("monitor"))
	s.NewSession()
	return s
}

func (s *Service) Monitor() *monitor.Monitor {
	return s.monitor
}

// NewSession drops all state, restores default settings and tracks the
// player.
func (s *Service) NewSession() {
	s.outfits.Reset()
	s.cache.Reset()
	s.applySettings(DefaultSettings())
	s.assignments.Add(s.host.Player())
	s.monitor.ResetState()
}

func (s *Service) applySettings(settings Settings) {
	s.settings = settings
	s.engine.Policies = reconcile.Policies{Player: settings.PlayerMode, NPC: settings.NPCMode}
}

func (s *Service) Settings() Settings {
	return s.settings
}

func (s *Service) Enabled() bool {
	return s.settings.Enabled
}

func (s *Service) SetEnabled(enabled bool) {
	s.settings.Enabled = enabled
}

func (s *Service) SetClimatePriority(on bool) {
	s.settings.ClimatePriority = on
}

func (s *Service) SetQuickSlotEnabled(on bool) {
	s.settings.QuickSlotEnabled = on
}

// SetModes sets the inventory policies for the player and for everyone else.
func (s *Service) SetModes(player, npc reconcile.Policy) error {
	for _, p := range []reconcile.Policy{player, npc} {
		if !p.Valid() {
			return fmt.Errorf("setting modes: %w", reconcile.ErrUnknownPolicy)
		}
	}
	s.settings.PlayerMode, s.settings.NPCMode = player, npc
	s.engine.Policies = reconcile.Policies{Player: player, NPC: npc}
	return nil
}

// Outfits

func (s *Service) CreateOutfit(name string) error {
	return s.outfits.Create(name)
}

func (s *Service) DeleteOutfit(name string) {
	s.outfits.Delete(name)
}

func (s *Service) RenameOutfit(oldName, newName string) error {
	return s.outfits.Rename(oldName, newName)
}

func (s *Service) OutfitExists(name string) bool {
	return s.outfits.Exists(name)
}

func (s *Service) ListOutfits(favoritesOnly bool) []string {
	return s.outfits.ListNames(favoritesOnly)
}

func (s *Service) OutfitContents(name string) ([]item.ID, error) {
	return s.outfits.Contents(name)
}

func (s *Service) IsFavorite(name string) bool {
	outfit, err := s.outfits.Get(name)
	return err == nil && outfit.Favorite
}

func (s *Service) SetFavorite(name string, favorite bool) error {
	if !s.outfits.Exists(name) {
		return fmt.Errorf("setting favorite on %q: %w", name, wardrobe.ErrNotFound)
	}
	s.outfits.SetFavorite(name, favorite)
	return nil
}

func (s *Service) AddItems(name string, items ...item.ID) error {
	return s.outfits.AddItems(name, items...)
}

func (s *Service) RemoveItems(name string, items ...item.ID) error {
	return s.outfits.RemoveItems(name, items...)
}

func (s *Service) OverwriteOutfit(name string, items []item.ID) error {
	return s.outfits.Overwrite(name, items)
}

func (s *Service) ModifyOutfit(name string, add, remove []item.ID, createIfMissing bool) error {
	return s.outfits.Modify(name, add, remove, createIfMissing)
}

func (s *Service) ConflictsWith(name string, candidate item.ID) (bool, error) {
	return s.outfits.ConflictsWith(name, candidate, s.host)
}

func (s *Service) RemoveConflicting(name string, candidate item.ID) ([]item.ID, error) {
	return s.outfits.RemoveConflicting(name, candidate, s.host)
}

// AddReport describes what AddItemsChecked did.
type AddReport struct {
	Added     []item.ID
	Conflicts []item.ID
	Removed   []item.ID
}

// AddItemsChecked adds items to name after checking each against the
// outfit's slots. Without replace nothing is added while any item clashes
// and the clashing candidates are reported. With replace the outfit's
// clashing items are removed first.
func (s *Service) AddItemsChecked(name string, items []item.ID, createIfMissing, replace bool) (AddReport, error) {
	var report AddReport
	if createIfMissing && !s.outfits.Exists(name) {
		if err := s.outfits.Create(name); err != nil {
			return report, err
		}
	}
	outfit, err := s.outfits.Get(name)
	if err != nil {
		return report, err
	}

	var fresh []item.ID
	for _, it := range items {
		if !it.Valid() || outfit.Items.Has(it) {
			continue
		}
		fresh = append(fresh, it)
		clash, err := s.outfits.ConflictsWith(name, it, s.host)
		if err != nil {
			return report, err
		}
		if !clash {
			continue
		}
		if !replace {
			report.Conflicts = append(report.Conflicts, it)
			continue
		}
		removed, err := s.outfits.RemoveConflicting(name, it, s.host)
		if err != nil {
			return report, err
		}
		report.Removed = append(report.Removed, removed...)
	}
	if len(report.Conflicts) > 0 {
		return report, nil
	}
	if err := s.outfits.AddItems(name, fresh...); err != nil {
		return report, err
	}
	report.Added = fresh
	return report, nil
}

// AddWornItems puts everything c currently wears into the named outfit,
// creating it if needed.
func (s *Service) AddWornItems(name string, c host.CharacterID) error {
	return s.outfits.Modify(name, s.host.Worn(c), nil, true)
}

func (s *Service) ItemName(it item.ID) string {
	return s.host.ItemName(it)
}

// Characters

// AddCharacter starts tracking c and resets the monitor when the population
// changed.
func (s *Service) AddCharacter(c host.CharacterID) bool {
	if !s.assignments.Add(c) {
		return false
	}
	s.monitor.ResetState()
	return true
}

func (s *Service) RemoveCharacter(c host.CharacterID) (bool, error) {
	if c == s.host.Player() {
		return false, ErrPlayer
	}
	if !s.assignments.Remove(c) {
		return false, nil
	}
	s.cache.Forget(c)
	s.monitor.ResetState()
	return true, nil
}

func (s *Service) Tracked() []host.CharacterID {
	return s.assignments.List()
}

func (s *Service) IsTracked(c host.CharacterID) bool {
	return s.assignments.Tracked(c)
}

func (s *Service) CharacterName(c host.CharacterID) string {
	if name := s.host.Name(c); name != "" {
		return name
	}
	return c.String()
}

func (s *Service) requireTracked(c host.CharacterID) error {
	if !s.assignments.Tracked(c) {
		return fmt.Errorf("%s: %w", c, ErrUntracked)
	}
	return nil
}

// SelectOutfit makes name c's current outfit. A name that does not resolve
// leaves c without an outfit and is reported as ErrNotFound.
func (s *Service) SelectOutfit(c host.CharacterID, name string) error {
	if err := s.requireTracked(c); err != nil {
		return err
	}
	s.assignments.SetCurrent(c, name)
	if name != wardrobe.NoOutfit && !s.outfits.Exists(name) {
		return fmt.Errorf("selecting outfit %q: %w", name, wardrobe.ErrNotFound)
	}
	return nil
}

func (s *Service) CurrentOutfit(c host.CharacterID) string {
	return s.assignments.Current(c)
}

func (s *Service) SetSituationOutfit(c host.CharacterID, category situation.Category, name string) error {
	if err := s.requireTracked(c); err != nil {
		return err
	}
	s.assignments.SetSituation(c, category, name)
	return nil
}

func (s *Service) UnsetSituationOutfit(c host.CharacterID, category situation.Category) error {
	if err := s.requireTracked(c); err != nil {
		return err
	}
	s.assignments.UnsetSituation(c, category)
	return nil
}

func (s *Service) SituationOutfit(c host.CharacterID, category situation.Category) (string, bool) {
	return s.assignments.Situation(c, category)
}

// Assignment returns a copy of c's full record.
func (s *Service) Assignment(c host.CharacterID) (wardrobe.Assignment, bool) {
	return s.assignments.Get(c)
}

// SetScene records whether c is inside a scene owned by another system. It
// reports false for untracked characters.
func (s *Service) SetScene(c host.CharacterID, inScene bool) bool {
	if !s.assignments.Tracked(c) {
		return false
	}
	s.cache.SetScene(c, inScene)
	return true
}

func (s *Service) InScene(c host.CharacterID) bool {
	return s.cache.Scene(c)
}

// Situation resolution

// Signals gathers c's classifier inputs from the host.
func (s *Service) Signals(c host.CharacterID) situation.Signals {
	sig := situation.Signals{
		Tracked: s.assignments.Tracked(c),
		Loaded:  s.host.Loaded(c),
		InScene: s.cache.Scene(c),
		DayPart: situation.DayPartAt(s.host.Hour()),
	}
	if loc, ok := s.host.Location(c); ok {
		sig.InCell = true
		sig.Interior = loc.Interior
		sig.Keywords = situation.CollectKeywords(loc)
	}
	weather := s.host.Weather()
	sig.Snowy, sig.Rainy = weather.Snowy, weather.Rainy

	act := s.host.Activity(c)
	sig.InCombat = act.InCombat
	sig.InWater = act.InWater
	sig.Swimming = act.Swimming
	sig.Sleeping = act.Sleeping
	sig.Mounted = act.Mounted
	return sig
}

func (s *Service) Classify(c host.CharacterID) (situation.Category, bool) {
	opts := situation.Options{ClimatePriority: s.settings.ClimatePriority}
	return situation.Classify(s.Signals(c), s.assignments.Mapped(c), opts)
}

// ResolveAndApply selects the outfit mapped to c's current situation,
// falling back to the World mapping. When neither exists the current
// selection is kept.
func (s *Service) ResolveAndApply(c host.CharacterID) (situation.Category, bool) {
	category, ok := s.Classify(c)
	if !ok {
		return 0, false
	}
	name, found := s.assignments.Situation(c, category)
	if !found {
		name, found = s.assignments.Situation(c, situation.World)
	}
	if !found {
		return category, false
	}
	s.assignments.SetCurrent(c, name)
	return category, true
}

func (s *Service) Reconcile(c host.CharacterID) reconcile.Result {
	return s.engine.Reconcile(c)
}

func (s *Service) AllowEquip(c host.CharacterID, it item.ID) bool {
	if !s.settings.Enabled {
		return true
	}
	return s.engine.AllowEquip(c, it)
}

// EquipItem equips it on c outside of reconciliation, the way a game script
// or the player's inventory menu would. The equip gate is asked first.
func (s *Service) EquipItem(c host.CharacterID, it item.ID) error {
	if !it.Valid() {
		return fmt.Errorf("equipping on %s: item is required", c)
	}
	if !s.AllowEquip(c, it) {
		return fmt.Errorf("equipping %s on %s: %w", it, c, ErrEquipBlocked)
	}
	if err := s.host.Equip(c, it, false); err != nil {
		return fmt.Errorf("equipping %s on %s: %w", it, c, err)
	}
	return nil
}

// PassReport summarizes one population-wide update.
type PassReport struct {
	ID      string
	Reason  string
	Results []reconcile.Result
}

// UpdateAll re-resolves the situation of every tracked character and then
// reconciles each of them. It does nothing while the system is disabled.
func (s *Service) UpdateAll(reason string) {
	s.Refresh(reason)
}

// Refresh is UpdateAll with a report of what happened.
func (s *Service) Refresh(reason string) PassReport {
	report := PassReport{ID: uuid.NewString(), Reason: reason}
	if !s.settings.Enabled {
		return report
	}
	log := s.logger.With(zap.String("pass", report.ID), zap.String("reason", reason))

	tracked := s.assignments.List()
	for _, c := range tracked {
		if category, ok := s.ResolveAndApply(c); ok {
			log.Debug("situation resolved",
				zap.String("character", c.String()),
				zap.Stringer("category", category),
				zap.String("outfit", s.assignments.Current(c)))
		}
	}
	failures := 0
	for _, c := range tracked {
		res := s.engine.Reconcile(c)
		failures += res.Failures
		report.Results = append(report.Results, res)
	}
	log.Info("outfits updated", zap.Int("characters", len(tracked)), zap.Int("failures", failures))
	return report
}

// ResetMonitor rebuilds the monitor's trackers.
func (s *Service) ResetMonitor() {
	s.monitor.ResetState()
}

// RestartMonitor stops a running monitor and queues a reset and restart on
// the apply context. A stopped monitor only has its trackers rebuilt. It
// reports whether a restart was queued.
func (s *Service) RestartMonitor() bool {
	if !s.monitor.Running() {
		s.monitor.ResetState()
		return false
	}
	if !s.monitor.Restart() {
		s.logger.Warn("monitor restart could not be queued, monitor stays stopped")
		return false
	}
	return true
}
