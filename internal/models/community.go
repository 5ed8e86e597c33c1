package models

// Group представляет группу сообщества
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"ownerId"`
	CoverURL    string `json:"coverUrl,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Post представляет публикацию в ленте или в группе
type Post struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	ImageURL     string `json:"imageUrl,omitempty"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	GroupID      string `json:"groupId,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	LikeCount    int    `json:"likeCount,omitempty"`
	CommentCount int    `json:"commentCount,omitempty"`
}

// Comment представляет комментарий к посту
type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"` // PostID родительский пост, используется для производных ключей кэша
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Profile публичный профиль пользователя, ID совпадает с ID пользователя
type Profile struct {
	ID          string `json:"id"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Membership членство пользователя в группе
type Membership struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Like отметка "нравится" на посте
type Like struct {
	ID        string `json:"id"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// FriendshipStatus статус заявки в друзья
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship связь между двумя пользователями
type Friendship struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requesterId"`
	AddresseeID string           `json:"addresseeId"`
	Status      FriendshipStatus `json:"status"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}

// Involves проверяет, что дружба связывает пользователей a и b (в любом направлении)
func (f *Friendship) Involves(a, b string) bool {
	return (f.RequesterID == a && f.AddresseeID == b) || (f.RequesterID == b && f.AddresseeID == a)
}

// DirectMessage личное сообщение между двумя пользователями
type DirectMessage struct {
	ID          string `json:"id"`
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName"`
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ChatMessage сообщение общего чата
type ChatMessage struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Timestamp any    `json:"timestamp,omitempty"` // ISO строка или unix миллисекунды
	CreatedAt string `json:"createdAt,omitempty"`
}

// User пользователь, как его отдает коллекция users
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
