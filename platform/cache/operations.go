package cache

import (
	"github.com/gomodule/redigo/redis"
)

func Del(key string, conn redis.Conn) error {
	_, err := conn.Do("DEL", key)
	return err
}

func Exists(key string, conn redis.Conn) (bool, error) {
	return redis.Bool(conn.Do("EXISTS", key))
}

func HGET(key string, field string, conn redis.Conn) (string, error) {
	return redis.String(conn.Do("HGET", key, field))
}

func HGETInt(key string, field string, conn redis.Conn) (int, error) {
	return redis.Int(conn.Do("HGET", key, field))
}

// LGET returns the whole list.
func LGET(key string, conn redis.Conn) ([][]byte, error) {
	return redis.ByteSlices(conn.Do("LRANGE", key, 0, -1))
}
