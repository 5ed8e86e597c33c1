// Package realtime управляет жизненным циклом push-канала (websocket):
// подключение, чтение фреймов, переподключение с фиксированной задержкой.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/communitysync/internal/models"
)

// DefaultReconnectDelay задержка перед повторным подключением
const DefaultReconnectDelay = 3 * time.Second

// writeWait дедлайн записи управляющих фреймов (ping, close)
const writeWait = 5 * time.Second

// ErrEmptyURL Open вызван без адреса
var ErrEmptyURL = errors.New("empty channel url")

// Conn часть websocket соединения, которую использует менеджер
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Dialer устанавливает websocket соединение
type Dialer interface {
	DialContext(ctx context.Context, url string, header http.Header) (Conn, error)
}

// Timer отменяемый таймер повторной попытки
type Timer interface {
	Stop() bool
}

// AfterFunc планирует fn через d. По умолчанию time.AfterFunc.
type AfterFunc func(d time.Duration, fn func()) Timer

// TransportError обрыв или ошибка установки соединения
type TransportError struct {
	Err       error
	Op        string
	CloseCode int
}

func (e *TransportError) Error() string {
	if e.CloseCode != 0 {
		return fmt.Sprintf("%s: connection closed with code %d: %v", e.Op, e.CloseCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Config параметры менеджера
type Config struct {
	Token            string        // Token bearer токен для заголовка Authorization при подключении
	ReconnectDelay   time.Duration // ReconnectDelay фиксированная задержка перед повторным подключением
	PingInterval     time.Duration // PingInterval интервал ping фреймов, 0 отключает keepalive
	HandshakeTimeout time.Duration // HandshakeTimeout таймаут handshake, 0 без ограничения
}

// gorillaDialer адаптер websocket.Dialer к интерфейсу Dialer
type gorillaDialer struct {
	dialer *websocket.Dialer
}

// NewDialer создает Dialer на основе gorilla/websocket
func NewDialer(handshakeTimeout time.Duration) Dialer {
	return &gorillaDialer{dialer: &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}}
}

func (d *gorillaDialer) DialContext(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}
	return conn, nil
}

// Manager владеет логическим push-соединением сессии.
// В каждый момент существует не более одного соединения и не более одного таймера переподключения.
//
// Обработчики OnStateChange и OnMessage вызываются последовательно в порядке событий
// и не должны синхронно вызывать Open или Close.
type Manager struct {
	dialer     Dialer
	afterFunc  AfterFunc
	logger     *slog.Logger
	conn       Conn
	retry      Timer
	lastErr    error
	cancelDial context.CancelFunc
	stopPing   chan struct{}
	url        string
	onState    []func(models.ConnectionState)
	onMessage  []func([]byte)
	cfg        Config
	gen        uint64
	state      models.ConnectionState
	// dispatchMu упорядочивает переходы состояний и доставку обработчикам, берется до mu
	dispatchMu sync.Mutex
	mu         sync.Mutex
}

// Option настраивает Manager
type Option func(*Manager)

// WithDialer подменяет dialer (тесты)
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithAfterFunc подменяет фабрику таймеров (тесты)
func WithAfterFunc(fn AfterFunc) Option {
	return func(m *Manager) {
		m.afterFunc = fn
	}
}

// NewManager создает менеджер в состоянии Idle
func NewManager(cfg Config, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	m := &Manager{
		cfg:    cfg,
		logger: logger,
		state:  models.StateIdle,
		afterFunc: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.dialer == nil {
		m.dialer = NewDialer(cfg.HandshakeTimeout)
	}
	return m
}

// OnStateChange регистрирует обработчик смены состояния
func (m *Manager) OnStateChange(fn func(models.ConnectionState)) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()
	m.onState = append(m.onState, fn)
}

// OnMessage регистрирует обработчик входящих фреймов
func (m *Manager) OnMessage(fn func([]byte)) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()
	m.onMessage = append(m.onMessage, fn)
}

// State возвращает текущее состояние
func (m *Manager) State() models.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError возвращает последнюю транспортную ошибку
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Open начинает подключение. Вызов при активном соединении (Connecting, Open, Reconnecting) ничего не делает.
func (m *Manager) Open(url string) error {
	if url == "" {
		return ErrEmptyURL
	}

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	if state := m.state; state.Active() {
		m.mu.Unlock()
		m.logger.Debug("Open ignored, channel already active", "state", state.String())
		return nil
	}
	m.url = url
	m.lastErr = nil
	m.connectLocked()
	m.mu.Unlock()

	m.emitState(models.StateConnecting)
	return nil
}

// Close закрывает соединение кодом 1000 и отменяет запланированное переподключение.
// Повторный вызов ничего не делает.
func (m *Manager) Close() {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	if m.state == models.StateClosed || m.state == models.StateIdle {
		m.state = models.StateClosed
		m.mu.Unlock()
		return
	}

	m.gen++
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	conn := m.conn
	m.conn = nil
	m.stopPingLocked()
	m.state = models.StateClosed
	m.mu.Unlock()

	if conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
			m.logger.Debug("Failed to send close frame", "error", err)
		}
		_ = conn.Close()
	}

	m.logger.Info("Push channel closed by owner")
	m.emitState(models.StateClosed)
}

// connectLocked переводит менеджер в Connecting и запускает подключение в отдельной горутине
func (m *Manager) connectLocked() {
	m.gen++
	gen := m.gen
	m.state = models.StateConnecting

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDial = cancel

	header := http.Header{}
	if m.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+m.cfg.Token)
	}

	go m.dial(ctx, cancel, gen, m.url, header)
}

func (m *Manager) dial(ctx context.Context, cancel context.CancelFunc, gen uint64, url string, header http.Header) {
	m.logger.Debug("Dialing push channel", "url", url)
	conn, err := m.dialer.DialContext(ctx, url, header)
	// контекст ограничивает только handshake
	cancel()

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	if gen != m.gen || m.state == models.StateClosed {
		// Close или новый Open пришли раньше результата
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	m.cancelDial = nil

	if err != nil {
		m.failLocked(&TransportError{Op: "dial", Err: err})
		m.mu.Unlock()
		m.emitState(models.StateReconnecting)
		return
	}

	m.conn = conn
	m.state = models.StateOpen
	stop := make(chan struct{})
	m.stopPing = stop
	m.mu.Unlock()

	m.logger.Info("Push channel open", "url", url)
	go m.readLoop(gen, conn)
	if m.cfg.PingInterval > 0 {
		go m.pingLoop(conn, stop)
	}
	m.emitState(models.StateOpen)
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.disconnected(gen, err)
			return
		}
		m.deliver(gen, data)
	}
}

func (m *Manager) deliver(gen uint64, data []byte) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	current := gen == m.gen && m.state == models.StateOpen
	m.mu.Unlock()
	if !current {
		return
	}

	for _, fn := range m.onMessage {
		fn(data)
	}
}

// disconnected обрабатывает завершение чтения со стороны сети или сервера:
// любой код закрытия ведет к переподключению через ReconnectDelay
func (m *Manager) disconnected(gen uint64, err error) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	if gen != m.gen || m.state != models.StateOpen {
		m.mu.Unlock()
		return
	}

	conn := m.conn
	m.conn = nil
	m.stopPingLocked()
	if conn != nil {
		_ = conn.Close()
	}

	// Closed достигается только через Close владельца: код 1000 от сервера
	// (например, при его перезапуске) тоже приводит к переподключению
	transportErr := &TransportError{Op: "read", Err: err}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		transportErr.CloseCode = closeErr.Code
	}
	m.failLocked(transportErr)
	m.mu.Unlock()
	m.emitState(models.StateReconnecting)
}

// failLocked переводит в Reconnecting и планирует единственную повторную попытку
func (m *Manager) failLocked(err *TransportError) {
	m.lastErr = err
	m.state = models.StateReconnecting
	if m.retry != nil {
		m.retry.Stop()
	}

	gen := m.gen
	m.retry = m.afterFunc(m.cfg.ReconnectDelay, func() {
		m.reconnect(gen)
	})
	m.logger.Warn("Push channel lost, reconnect scheduled",
		"error", err,
		"delay", m.cfg.ReconnectDelay,
	)
}

func (m *Manager) reconnect(gen uint64) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	if gen != m.gen || m.state != models.StateReconnecting {
		m.mu.Unlock()
		return
	}
	m.retry = nil
	m.connectLocked()
	m.mu.Unlock()

	m.emitState(models.StateConnecting)
}

func (m *Manager) pingLoop(conn Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				// обрыв обнаружит readLoop
				m.logger.Debug("Ping failed", "error", err)
				return
			}
		}
	}
}

func (m *Manager) stopPingLocked() {
	if m.stopPing != nil {
		close(m.stopPing)
		m.stopPing = nil
	}
}

// emitState вызывается под dispatchMu
func (m *Manager) emitState(state models.ConnectionState) {
	for _, fn := range slices.Clone(m.onState) {
		fn(state)
	}
}
