package simulator

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/ergowatches/served/internal/factories"
	"github.com/ergowatches/served/internal/menu"
	"github.com/ergowatches/served/internal/models"
	"github.com/ergowatches/served/internal/profile"
	"github.com/ergowatches/served/internal/split"

	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
)

// activeSession couples a table session with its live split state.
type activeSession struct {
	models.TableSession
	split       *split.Session
	updatesLeft int
}

type tableState struct {
	ID      string
	Status  string
	Session *activeSession
}

// rotationSnapshot is the payload of a menu rotation event, captured at
// the moment the visible set changed.
type rotationSnapshot struct {
	MenuNames  []string
	Categories []string
}

type Simulator struct {
	Config      *models.Config
	Catalog     *models.Catalog
	Rules       *models.RuleSet
	PromoCodes  []models.Discount
	Evaluator   *menu.Evaluator
	Profile     *profile.Profile
	Tables      map[string]*tableState
	CurrentTime time.Time
	Rng         *rand.Rand
	EventQueue  *models.EventQueue

	profileStore *profile.Store
	guestFactory *factories.GuestFactory
	visibleNow   []string
}

func NewSimulator(config *models.Config) *Simulator {
	seed := int64(config.Seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		Config:       config,
		CurrentTime:  config.StartDate,
		Tables:       make(map[string]*tableState),
		Rng:          rand.New(rand.NewSource(seed)),
		EventQueue:   models.NewEventQueue(),
		guestFactory: &factories.GuestFactory{},
	}
}

func (s *Simulator) initializeData() error {
	if s.Config.CatalogFile != "" {
		catalog, rules, promos, err := models.LoadCatalogFile(s.Config.CatalogFile)
		if err != nil {
			return err
		}
		s.Catalog, s.Rules, s.PromoCodes = catalog, rules, promos
	} else {
		catalogFactory := &factories.CatalogFactory{}
		ruleFactory := &factories.RuleFactory{}
		s.Catalog = catalogFactory.CreateCatalog(s.Config)
		s.Rules = ruleFactory.CreateRuleSet(s.Catalog)
		s.PromoCodes = ruleFactory.CreatePromoCodes()
	}

	for _, rule := range s.Rules.Availability {
		if err := menu.ValidateWindow(rule.Window); err != nil {
			log.Printf("Availability rule %q: %v", rule.Name, err)
		}
	}
	for _, rule := range s.Rules.Pricing {
		if err := menu.ValidateWindow(rule.Window); err != nil {
			log.Printf("Pricing rule %q: %v", rule.Name, err)
		}
	}

	s.Evaluator = menu.NewEvaluator(s.Catalog, s.Rules)

	s.profileStore = profile.NewStore(s.Config.ProfilePath)
	p, err := s.profileStore.Load()
	if err != nil {
		log.Printf("Could not load guest profile, starting fresh: %v", err)
		p = &profile.Profile{Theme: profile.DefaultTheme}
	}
	s.Profile = p

	tables := s.Config.Tables
	if tables <= 0 {
		tables = 12
	}
	for i := 1; i <= tables; i++ {
		id := fmt.Sprintf("t%02d", i)
		s.Tables[id] = &tableState{ID: id, Status: models.TableStatusFree}
	}

	s.visibleNow = s.Evaluator.VisibleCategories(s.CurrentTime)
	return nil
}

func (s *Simulator) Run() {
	if err := s.initializeData(); err != nil {
		log.Fatalf("Failed to initialize simulation data: %v", err)
	}

	output := s.determineOutputDestination()
	defer func() {
		if err := output.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()
	log.Printf("Simulation starts from %s to %s\n", s.CurrentTime.Format(time.RFC3339), s.Config.EndDate.Format(time.RFC3339))

	var bar *progressbar.ProgressBar
	if !s.Config.Continuous {
		totalMinutes := int64(s.Config.EndDate.Sub(s.CurrentTime).Minutes())
		bar = progressbar.Default(totalMinutes, "simulating")
	}

	var eventsCount int
	for s.CurrentTime.Before(s.Config.EndDate) {
		// process events that have come due
		for {
			next := s.EventQueue.Peek()
			if next == nil || next.Time.After(s.CurrentTime) {
				break
			}
			event := s.EventQueue.Dequeue()
			if event == nil {
				continue
			}
			eventsCount++
			for _, msg := range s.processEvent(event) {
				if err := output.WriteMessage(msg.Topic, msg.Message); err != nil {
					log.Printf("Failed to write message: %v", err)
				}
			}
		}

		s.simulateTimeStep()

		if bar != nil {
			_ = bar.Add(1)
		} else if s.Config.Continuous {
			time.Sleep(1 * time.Second)
		}

		s.CurrentTime = s.CurrentTime.Add(1 * time.Minute)
	}

	if err := s.profileStore.Save(s.Profile); err != nil {
		log.Printf("Failed to save guest profile: %v", err)
	}
	log.Printf("Simulation completed: %d events processed", eventsCount)
}

// simulateTimeStep runs the per-minute checks: menu rotation changes and
// new parties being seated.
func (s *Simulator) simulateTimeStep() {
	s.checkMenuRotation()
	s.seatArrivals()
}

func (s *Simulator) checkMenuRotation() {
	visible := s.Evaluator.VisibleCategories(s.CurrentTime)
	if equalStrings(visible, s.visibleNow) {
		return
	}
	s.visibleNow = visible

	menus := s.Evaluator.ActiveMenus(s.CurrentTime)
	names := make([]string, 0, len(menus))
	for _, m := range menus {
		names = append(names, m.Name)
	}
	s.EventQueue.Enqueue(&models.Event{
		Time: s.CurrentTime,
		Type: models.EventRotateMenu,
		Data: rotationSnapshot{MenuNames: names, Categories: visible},
	})
}

func (s *Simulator) seatArrivals() {
	factor := seatingFactor(s.CurrentTime) * s.Config.OccupancyFactor
	if factor <= 0 {
		return
	}
	for id, table := range s.Tables {
		if table.Status != models.TableStatusFree {
			continue
		}
		if s.Rng.Float64() < factor {
			s.EventQueue.Enqueue(&models.Event{
				Time: s.CurrentTime,
				Type: models.EventSeatTable,
				Data: id,
			})
		}
	}
}

func (s *Simulator) processEvent(event *models.Event) []models.EventMessage {
	switch event.Type {
	case models.EventSeatTable:
		return s.handleSeatTable(event.Data.(string))
	case models.EventPlaceOrder:
		return s.handlePlaceOrder(event.Data.(*activeSession))
	case models.EventUpdateSplit:
		return s.handleUpdateSplit(event.Data.(*activeSession))
	case models.EventSettleBill:
		return s.handleSettleBill(event.Data.(*activeSession))
	case models.EventRotateMenu:
		return s.handleRotateMenu(event.Data.(rotationSnapshot))
	}
	return nil
}

func (s *Simulator) handleSeatTable(tableID string) []models.EventMessage {
	table, ok := s.Tables[tableID]
	if !ok || table.Status != models.TableStatusFree {
		return nil
	}

	sess := &activeSession{
		TableSession: models.TableSession{
			ID:         cuid.New(),
			TableID:    tableID,
			GuestCount: s.guestFactory.PartySize(s.Config.MinGuests, s.Config.MaxGuests),
			SeatedAt:   s.CurrentTime,
			Status:     models.SessionStatusSeated,
		},
	}
	table.Status = models.TableStatusOccupied
	table.Session = sess

	s.EventQueue.Enqueue(&models.Event{
		Time: s.CurrentTime.Add(s.jitterMinutes(3, 10)),
		Type: models.EventPlaceOrder,
		Data: sess,
	})

	event := TableSeatedEvent{
		BaseEvent:  s.baseEvent(models.EventSeatTable, sess),
		GuestCount: int64(sess.GuestCount),
		SeatedAt:   sess.SeatedAt.Unix(),
	}
	return s.emit(TopicTableSeated, event)
}

func (s *Simulator) handlePlaceOrder(sess *activeSession) []models.EventMessage {
	if sess.Status != models.SessionStatusSeated {
		return nil
	}

	lines := s.buildCart(sess.GuestCount)
	if len(lines) == 0 {
		// nothing on offer right now, the party gives up and leaves
		s.vacate(sess)
		return nil
	}
	sess.Lines = lines
	sess.Status = models.SessionStatusOrdered

	sess.split = split.NewSession(lines, s.guestFactory.GuestName(), s.guestFactory.GuestName())
	for i := 2; i < sess.GuestCount; i++ {
		sess.split.AddParticipant(s.guestFactory.GuestName())
	}
	sess.updatesLeft = s.Rng.Intn(4)

	if sess.updatesLeft > 0 {
		s.EventQueue.Enqueue(&models.Event{
			Time: s.CurrentTime.Add(s.jitterMinutes(2, 8)),
			Type: models.EventUpdateSplit,
			Data: sess,
		})
	}
	s.EventQueue.Enqueue(&models.Event{
		Time: s.CurrentTime.Add(s.jitterMinutes(25, 45)),
		Type: models.EventSettleBill,
		Data: sess,
	})

	itemIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	event := OrderPlacedEvent{
		BaseEvent: s.baseEvent(models.EventPlaceOrder, sess),
		ItemIDs:   strings.Join(itemIDs, ","),
		LineCount: int64(len(lines)),
		Subtotal:  menu.RoundPrice(sess.Subtotal()),
		Status:    sess.Status,
	}
	return s.emit(TopicOrderPlaced, event)
}

func (s *Simulator) handleUpdateSplit(sess *activeSession) []models.EventMessage {
	if sess.Status != models.SessionStatusOrdered || sess.split == nil {
		return nil
	}
	sess.updatesLeft--
	if sess.updatesLeft > 0 {
		s.EventQueue.Enqueue(&models.Event{
			Time: s.CurrentTime.Add(s.jitterMinutes(2, 8)),
			Type: models.EventUpdateSplit,
			Data: sess,
		})
	}

	op, accepted := s.randomSplitOp(sess)
	event := SplitUpdatedEvent{
		BaseEvent:    s.baseEvent(models.EventUpdateSplit, sess),
		Operation:    op,
		Participants: int64(len(sess.split.Participants())),
		Accepted:     accepted,
	}
	return s.emit(TopicSplitUpdated, event)
}

func (s *Simulator) handleSettleBill(sess *activeSession) []models.EventMessage {
	if sess.Status != models.SessionStatusOrdered || sess.split == nil {
		return nil
	}

	var discount *models.Discount
	if len(s.PromoCodes) > 0 && s.Rng.Float64() < 0.2 {
		d := s.PromoCodes[s.Rng.Intn(len(s.PromoCodes))]
		if found, ok := models.FindDiscount(s.PromoCodes, d.Code); ok {
			discount = &found
			sess.PromoCode = found.Code
		}
	}

	subtotal := sess.split.Subtotal()
	totals := sess.split.Totals(discount)
	var discountAmount float64
	if discount != nil {
		discountAmount = discount.AmountOff(subtotal)
	}

	var total float64
	guestTotals := make([]string, 0, len(totals))
	for _, p := range sess.split.Participants() {
		amount := totals[p.ID]
		total += amount
		guestTotals = append(guestTotals, fmt.Sprintf("%s:%.2f", p.Name, amount))
	}
	sort.Strings(guestTotals)

	// occasionally the table stars one of the dishes for next time
	if s.Rng.Float64() < 0.15 {
		line := sess.Lines[s.Rng.Intn(len(sess.Lines))]
		s.Profile.AddFavorite(line.ItemID)
	}

	sess.Status = models.SessionStatusSettled
	s.vacate(sess)

	event := BillSettledEvent{
		BaseEvent:      s.baseEvent(models.EventSettleBill, sess),
		Subtotal:       menu.RoundPrice(subtotal),
		PromoCode:      sess.PromoCode,
		DiscountAmount: menu.RoundPrice(discountAmount),
		Total:          menu.RoundPrice(total),
		GuestTotals:    strings.Join(guestTotals, ","),
		Status:         sess.Status,
	}
	return s.emit(TopicBillSettled, event)
}

func (s *Simulator) handleRotateMenu(snap rotationSnapshot) []models.EventMessage {
	event := MenuRotationEvent{
		BaseEvent:         NewBaseEvent(models.EventRotateMenu, s.CurrentTime),
		ActiveMenus:       strings.Join(snap.MenuNames, ","),
		VisibleCategories: strings.Join(snap.Categories, ","),
	}
	return s.emit(TopicMenuRotation, event)
}

func (s *Simulator) vacate(sess *activeSession) {
	if table, ok := s.Tables[sess.TableID]; ok {
		table.Status = models.TableStatusFree
		table.Session = nil
	}
}

func (s *Simulator) baseEvent(eventType string, sess *activeSession) BaseEvent {
	base := NewBaseEvent(eventType, s.CurrentTime)
	base.SessionID = sess.ID
	base.TableID = sess.TableID
	return base
}

func (s *Simulator) emit(topic string, payload interface{}) []models.EventMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error serializing event for topic %s: %v", topic, err)
		return nil
	}
	return []models.EventMessage{{Topic: topic, Message: data}}
}
