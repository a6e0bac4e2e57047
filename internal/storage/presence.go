package storage

const onlineUsersKey = "online_users"

// MarkOnline adds the user to the Redis online set. Called by the hub when
// a user's first connection registers.
func (s *Service) MarkOnline(userID string) error {
	return s.Redis.SAdd(s.Ctx, onlineUsersKey, userID).Err()
}

// MarkOffline removes the user from the online set. Called by the hub when
// a user's last connection goes away.
func (s *Service) MarkOffline(userID string) error {
	return s.Redis.SRem(s.Ctx, onlineUsersKey, userID).Err()
}

// OnlineUsers returns the IDs of all users with at least one live connection.
func (s *Service) OnlineUsers() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, onlineUsersKey).Result()
}
